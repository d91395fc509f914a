package drive

import (
	"context"
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// request is what the test server saw
type request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
}

// newTestFs makes an Fs talking to a test server which answers with
// handler and records every request in *requests
func newTestFs(t *testing.T, handler func(w http.ResponseWriter, r *request), requests *[]request) *Fs {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  map[string]string{},
		}
		for k := range r.URL.Query() {
			req.Query[k] = r.URL.Query().Get(k)
		}
		body, err := ioutil.ReadAll(r.Body)
		require.NoError(t, err)
		if len(body) > 0 {
			require.NoError(t, json.Unmarshal(body, &req.Body))
		}
		*requests = append(*requests, req)
		w.Header().Set("Content-Type", "application/json")
		handler(w, &req)
	}))
	t.Cleanup(server.Close)
	ctx, ci := fs.AddConfig(context.Background())
	ci.ListChunk = 2
	f, err := NewFsWithClient(ctx, &Options{Endpoint: server.URL + "/drive/v3/"}, server.Client())
	require.NoError(t, err)
	return f
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message, reason string) {
	w.WriteHeader(code)
	writeJSON(w, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"errors":  []map[string]string{{"reason": reason, "message": message}},
		},
	})
}

func TestParseDriveScopes(t *testing.T) {
	for _, test := range []struct {
		in   string
		want []string
	}{
		{"", []string{"https://www.googleapis.com/auth/drive"}},
		{"drive", []string{"https://www.googleapis.com/auth/drive"}},
		{"drive.readonly, drive.file", []string{
			"https://www.googleapis.com/auth/drive.readonly",
			"https://www.googleapis.com/auth/drive.file",
		}},
		{"drive,,", []string{"https://www.googleapis.com/auth/drive"}},
	} {
		assert.Equal(t, test.want, parseDriveScopes(test.in), test.in)
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'abc'`, quote("abc"))
	assert.Equal(t, `'it\'s'`, quote("it's"))
	assert.Equal(t, `'a\\b'`, quote(`a\b`))
}

func TestGetNode(t *testing.T) {
	var requests []request
	f := newTestFs(t, func(w http.ResponseWriter, r *request) {
		switch r.Path {
		case "/drive/v3/files/folder1":
			writeJSON(w, map[string]interface{}{
				"id": "folder1", "name": "Course", "mimeType": fs.FolderMimeType,
				"webViewLink": "https://drive.google.com/drive/folders/folder1",
			})
		case "/drive/v3/files/short1":
			writeJSON(w, map[string]interface{}{
				"id": "short1", "name": "link", "mimeType": fs.ShortcutMimeType,
				"shortcutDetails": map[string]string{"targetId": "folder1", "targetMimeType": fs.FolderMimeType},
			})
		default:
			writeError(w, http.StatusNotFound, "File not found", "notFound")
		}
	}, &requests)
	ctx := context.Background()

	node, err := f.GetNode(ctx, "folder1")
	require.NoError(t, err)
	assert.Equal(t, &fs.Node{
		ID:       "folder1",
		Name:     "Course",
		Kind:     fs.KindFolder,
		ViewLink: "https://drive.google.com/drive/folders/folder1",
	}, node)
	require.Len(t, requests, 1)
	assert.Equal(t, "GET", requests[0].Method)
	assert.Equal(t, "true", requests[0].Query["supportsAllDrives"])
	assert.Equal(t, nodeFields, requests[0].Query["fields"])

	node, err = f.GetNode(ctx, "short1")
	require.NoError(t, err)
	assert.Equal(t, fs.KindShortcut, node.Kind)
	assert.Equal(t, "folder1", node.ShortcutTargetID)

	_, err = f.GetNode(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fserrors.ErrorNotFound))
	code, ok := fserrors.Status(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, err.Error(), "notFound")
}

func TestListPage(t *testing.T) {
	var requests []request
	f := newTestFs(t, func(w http.ResponseWriter, r *request) {
		if r.Query["pageToken"] == "" {
			writeJSON(w, map[string]interface{}{
				"nextPageToken": "p2",
				"files": []map[string]interface{}{
					{"id": "a", "name": "a.txt", "mimeType": "text/plain"},
					{"id": "b", "name": "dangling", "mimeType": fs.ShortcutMimeType},
				},
			})
			return
		}
		writeJSON(w, map[string]interface{}{
			"files": []map[string]interface{}{
				{"id": "c", "name": "doc", "mimeType": "application/vnd.google-apps.document"},
			},
		})
	}, &requests)
	ctx := context.Background()

	page, err := f.ListPage(ctx, "it's", "")
	require.NoError(t, err)
	assert.Equal(t, "p2", page.NextPageToken)
	require.Len(t, page.Nodes, 2)
	assert.Equal(t, fs.KindFile, page.Nodes[0].Kind)
	assert.True(t, page.Nodes[1].IsDangling())

	page, err = f.ListPage(ctx, "it's", "p2")
	require.NoError(t, err)
	assert.Equal(t, "", page.NextPageToken)
	require.Len(t, page.Nodes, 1)
	assert.Equal(t, fs.KindFile, page.Nodes[0].Kind)

	require.Len(t, requests, 2)
	assert.Equal(t, "/drive/v3/files", requests[0].Path)
	assert.Equal(t, `'it\'s' in parents and trashed = false`, requests[0].Query["q"])
	assert.Equal(t, "2", requests[0].Query["pageSize"])
	assert.Equal(t, "true", requests[0].Query["includeItemsFromAllDrives"])
	assert.Equal(t, "", requests[0].Query["pageToken"])
	assert.Equal(t, "p2", requests[1].Query["pageToken"])
}

func TestCreateFolderAndCopy(t *testing.T) {
	var requests []request
	f := newTestFs(t, func(w http.ResponseWriter, r *request) {
		switch r.Path {
		case "/drive/v3/files":
			writeJSON(w, map[string]interface{}{"id": "new1", "name": r.Body["name"], "webViewLink": "link1"})
		case "/drive/v3/files/src1/copy":
			writeJSON(w, map[string]interface{}{"id": "new2", "name": r.Body["name"]})
		default:
			writeError(w, http.StatusBadRequest, "bad", "badRequest")
		}
	}, &requests)
	ctx := context.Background()

	dir, err := f.CreateFolder(ctx, "Course Jan", "")
	require.NoError(t, err)
	assert.Equal(t, &fs.Cloned{ID: "new1", Name: "Course Jan", ViewLink: "link1"}, dir)
	assert.Equal(t, "POST", requests[0].Method)
	assert.Equal(t, fs.FolderMimeType, requests[0].Body["mimeType"])
	assert.Nil(t, requests[0].Body["parents"])

	file, err := f.CopyFile(ctx, "src1", "Notes Jan", "new1")
	require.NoError(t, err)
	assert.Equal(t, &fs.Cloned{ID: "new2", Name: "Notes Jan"}, file)
	assert.Equal(t, "POST", requests[1].Method)
	assert.Equal(t, []interface{}{"new1"}, requests[1].Body["parents"])
	assert.Equal(t, "true", requests[1].Query["supportsAllDrives"])
}

func TestSharing(t *testing.T) {
	var requests []request
	f := newTestFs(t, func(w http.ResponseWriter, r *request) {
		switch {
		case r.Path == "/drive/v3/files/root1/permissions" && r.Method == "POST":
			writeJSON(w, map[string]string{"id": "anyoneWithLink"})
		case r.Path == "/drive/v3/files/root1" && r.Method == "PATCH":
			writeJSON(w, map[string]string{"id": "root1"})
		default:
			writeError(w, http.StatusUnauthorized, "Invalid Credentials", "authError")
		}
	}, &requests)
	ctx := context.Background()

	require.NoError(t, f.CreateAnyonePermission(ctx, "root1", fs.RoleWriter))
	assert.Equal(t, map[string]interface{}{
		"type":               "anyone",
		"role":               "writer",
		"allowFileDiscovery": false,
	}, requests[0].Body)

	require.NoError(t, f.SetWritersCanShare(ctx, "root1", false))
	assert.Equal(t, map[string]interface{}{"writersCanShare": false}, requests[1].Body)

	err := f.SetWritersCanShare(ctx, "other", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fserrors.ErrorForbidden))
	assert.False(t, fserrors.ShouldRetry(err))
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))
	plain := errors.New("boom")
	assert.Equal(t, plain, translateError(plain))
}
