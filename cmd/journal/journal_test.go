package journal

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/rclone/driveclone/lib/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing(t *testing.T) {
	db, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), time.Second)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	rec, err := db.StartRun("run-1", "src1")
	require.NoError(t, err)
	require.NoError(t, rec.Record(&fs.Node{ID: "src1", Kind: fs.KindFolder}, &fs.Cloned{ID: "new-1", Name: "Kurs Jan"}, ""))
	require.NoError(t, rec.Finish(nil, fserrors.NodeError("f1", fserrors.NewStatusError(401, nil))))

	var out bytes.Buffer
	require.NoError(t, listRuns(db, &out))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "RUN"))
	assert.Contains(t, lines[1], "run-1")
	assert.Contains(t, lines[1], "failed (Forbidden)")

	out.Reset()
	require.NoError(t, listEntries(db, "run-1", &out))
	assert.Contains(t, out.String(), `Run run-1 from "src1": failed`)
	assert.Contains(t, out.String(), "Error: f1: HTTP error 401")
	assert.Contains(t, out.String(), "Kurs Jan")

	assert.Error(t, listEntries(db, "nope", &out))
}
