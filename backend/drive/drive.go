// Package drive implements the remote for Google Drive used to read
// source trees and build their clones
package drive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/config/configmap"
	"github.com/rclone/driveclone/fs/config/configstruct"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/rclone/driveclone/fs/fshttp"
	"github.com/rclone/driveclone/lib/oauthutil"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Constants
const (
	defaultScope = "drive"
	nodeFields   = "id,name,mimeType,shortcutDetails,webViewLink"
	listFields   = "nextPageToken,files(" + nodeFields + ")"
	clonedFields = "id,name,webViewLink"
)

// Options defines the configuration for this backend
type Options struct {
	Scope                     string `config:"scope"`
	ServiceAccountFile        string `config:"service_account_file"`
	ServiceAccountCredentials string `config:"service_account_credentials"`
	TokenFile                 string `config:"token_file"`
	Impersonate               string `config:"impersonate"`
	Endpoint                  string `config:"endpoint"`
}

// Fs represents a Google Drive account
type Fs struct {
	opt       Options
	svc       *drive.Service
	client    *http.Client
	listChunk int64
}

// parseDriveScopes turns a comma separated list of scope names into
// the scope URLs, e.g. "drive,drive.readonly"
func parseDriveScopes(scopesString string) (scopes []string) {
	if scopesString == "" {
		scopesString = defaultScope
	}
	for _, scope := range strings.Split(scopesString, ",") {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		scopes = append(scopes, "https://www.googleapis.com/auth/"+scope)
	}
	return scopes
}

// NewFs makes an Fs from the google_drive config in m
func NewFs(ctx context.Context, m configmap.Getter) (*Fs, error) {
	opt := new(Options)
	err := configstruct.Set(m, opt)
	if err != nil {
		return nil, err
	}
	ci := fs.GetConfig(ctx)
	client, err := oauthutil.NewClient(ctx, &oauthutil.Credentials{
		ServiceAccountFile:        opt.ServiceAccountFile,
		ServiceAccountCredentials: opt.ServiceAccountCredentials,
		TokenFile:                 opt.TokenFile,
		Impersonate:               opt.Impersonate,
	}, fshttp.NewClient(ci), parseDriveScopes(opt.Scope)...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "drive: failed when making oauth client")
	}
	return NewFsWithClient(ctx, opt, client)
}

// NewFsWithClient makes an Fs which uses client, which should
// already be authorised, for every call
func NewFsWithClient(ctx context.Context, opt *Options, client *http.Client) (*Fs, error) {
	options := []option.ClientOption{option.WithHTTPClient(client)}
	if opt.Endpoint != "" {
		options = append(options, option.WithEndpoint(opt.Endpoint))
	}
	svc, err := drive.NewService(ctx, options...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "couldn't create Drive client")
	}
	return &Fs{
		opt:       *opt,
		svc:       svc,
		client:    client,
		listChunk: fs.GetConfig(ctx).ListChunk,
	}, nil
}

// Client returns the authorised HTTP client
func (f *Fs) Client() *http.Client {
	return f.client
}

// String returns a description of the Fs
func (f *Fs) String() string {
	return "Google Drive"
}

// translateError turns an error from the Drive library into one
// carrying the HTTP status so it can be classified
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		statusErr := fserrors.NewStatusError(gerr.Code, err)
		if gerr.Message != "" {
			statusErr.Message = gerr.Message
		}
		if len(gerr.Errors) > 0 && gerr.Errors[0].Reason != "" {
			statusErr.Message = fmt.Sprintf("%s (%s)", statusErr.Message, gerr.Errors[0].Reason)
		}
		return statusErr
	}
	return err
}

// quote escapes s for use in a search query
func quote(s string) string {
	s = strings.Replace(s, `\`, `\\`, -1)
	s = strings.Replace(s, `'`, `\'`, -1)
	return "'" + s + "'"
}

func toNode(item *drive.File) *fs.Node {
	node := &fs.Node{
		ID:       item.Id,
		Name:     item.Name,
		Kind:     fs.KindFromMimeType(item.MimeType),
		ViewLink: item.WebViewLink,
	}
	if node.Kind == fs.KindShortcut && item.ShortcutDetails != nil {
		node.ShortcutTargetID = item.ShortcutDetails.TargetId
	}
	return node
}

func toCloned(item *drive.File) *fs.Cloned {
	return &fs.Cloned{
		ID:       item.Id,
		Name:     item.Name,
		ViewLink: item.WebViewLink,
	}
}

// GetNode fetches the metadata of a single item
func (f *Fs) GetNode(ctx context.Context, id string) (*fs.Node, error) {
	item, err := f.svc.Files.Get(id).
		Fields(nodeFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	return toNode(item), nil
}

// ListPage fetches one page of the children of parentID which
// aren't in the trash
func (f *Fs) ListPage(ctx context.Context, parentID, pageToken string) (*fs.Page, error) {
	call := f.svc.Files.List().
		Q(fmt.Sprintf("%s in parents and trashed = false", quote(parentID))).
		Fields(listFields).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)
	if f.listChunk > 0 {
		call.PageSize(f.listChunk)
	}
	if pageToken != "" {
		call.PageToken(pageToken)
	}
	files, err := call.Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	page := &fs.Page{
		Nodes:         make([]*fs.Node, 0, len(files.Files)),
		NextPageToken: files.NextPageToken,
	}
	for _, item := range files.Files {
		page.Nodes = append(page.Nodes, toNode(item))
	}
	return page, nil
}

func parents(parentID string) []string {
	if parentID == "" {
		return nil
	}
	return []string{parentID}
}

// CreateFolder makes a folder called name in parentID or in My Drive
// if parentID is empty
func (f *Fs) CreateFolder(ctx context.Context, name, parentID string) (*fs.Cloned, error) {
	createInfo := &drive.File{
		Name:     name,
		MimeType: fs.FolderMimeType,
		Parents:  parents(parentID),
	}
	info, err := f.svc.Files.Create(createInfo).
		Fields(clonedFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	return toCloned(info), nil
}

// CopyFile makes a server side copy of srcID called name in parentID
func (f *Fs) CopyFile(ctx context.Context, srcID, name, parentID string) (*fs.Cloned, error) {
	copyInfo := &drive.File{
		Name:    name,
		Parents: parents(parentID),
	}
	info, err := f.svc.Files.Copy(srcID, copyInfo).
		Fields(clonedFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, translateError(err)
	}
	return toCloned(info), nil
}

// CreateAnyonePermission grants anyone with the link role on id
// without making it discoverable in search
func (f *Fs) CreateAnyonePermission(ctx context.Context, id string, role fs.Role) error {
	permission := &drive.Permission{
		Type:               "anyone",
		Role:               string(role),
		AllowFileDiscovery: false,
		ForceSendFields:    []string{"AllowFileDiscovery"},
	}
	_, err := f.svc.Permissions.Create(id, permission).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).Do()
	return translateError(err)
}

// SetWritersCanShare sets whether people with writer access to id
// may change its permissions
func (f *Fs) SetWritersCanShare(ctx context.Context, id string, allow bool) error {
	update := &drive.File{
		WritersCanShare: allow,
		ForceSendFields: []string{"WritersCanShare"},
	}
	_, err := f.svc.Files.Update(id, update).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).Do()
	return translateError(err)
}

// Check the interfaces are satisfied
var _ fs.Remote = (*Fs)(nil)
