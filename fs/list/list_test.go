package list

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rclone/driveclone/fs"
	"github.com/rclone/driveclone/fs/fserrors"
	"github.com/rclone/driveclone/fstest/mockremote"
	"github.com/rclone/driveclone/lib/pacer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPacer() *pacer.Pacer {
	return pacer.New(pacer.SleepOption(func(ctx context.Context, d time.Duration) error {
		return ctx.Err()
	}))
}

func makeFolder(n int) *mockremote.Remote {
	remote := mockremote.New()
	remote.AddFolder("parent", "Parent", "")
	for i := 0; i < n; i++ {
		remote.AddFile(fmt.Sprintf("file%d", i), fmt.Sprintf("file %d", i), "parent")
	}
	return remote
}

func names(nodes []*fs.Node) (out []string) {
	for _, node := range nodes {
		out = append(out, node.Name)
	}
	return out
}

func TestGetNode(t *testing.T) {
	ctx := context.Background()
	remote := makeFolder(0)
	r := NewReader(remote, newPacer())

	node, err := r.GetNode(ctx, "parent")
	require.NoError(t, err)
	assert.Equal(t, "Parent", node.Name)
	assert.Equal(t, fs.KindFolder, node.Kind)

	_, err = r.GetNode(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fserrors.ErrorNotFound))
	assert.Equal(t, "missing", fserrors.NodeID(err))
	assert.Equal(t, 2, remote.CountCalls(mockremote.MethodGetNode))
}

func TestGetNodeRetries(t *testing.T) {
	remote := makeFolder(0)
	remote.FailStatus(mockremote.MethodGetNode, "parent", 2, 503)
	r := NewReader(remote, newPacer())
	node, err := r.GetNode(context.Background(), "parent")
	require.NoError(t, err)
	assert.Equal(t, "parent", node.ID)
	assert.Equal(t, 3, remote.CountCalls(mockremote.MethodGetNode))
}

func TestChildrenPaging(t *testing.T) {
	for _, test := range []struct {
		items    int
		pageSize int
		pages    int
	}{
		{0, 3, 1},
		{1, 3, 1},
		{3, 3, 1},
		{4, 3, 2},
		{7, 3, 3},
		{10, 1, 10},
	} {
		t.Run(fmt.Sprintf("items=%d,pageSize=%d", test.items, test.pageSize), func(t *testing.T) {
			remote := makeFolder(test.items)
			remote.PageSize = test.pageSize
			r := NewReader(remote, newPacer())
			nodes, err := r.All(context.Background(), "parent")
			require.NoError(t, err)
			require.Equal(t, test.items, len(nodes))
			for i, node := range nodes {
				assert.Equal(t, fmt.Sprintf("file %d", i), node.Name)
			}
			assert.Equal(t, test.pages, remote.CountCalls(mockremote.MethodListPage))
		})
	}
}

func TestChildrenLazy(t *testing.T) {
	remote := makeFolder(5)
	remote.PageSize = 2
	r := NewReader(remote, newPacer())
	children := r.Children(context.Background(), "parent")
	assert.Equal(t, 0, remote.CountCalls(mockremote.MethodListPage))
	require.True(t, children.Next())
	assert.Equal(t, "file 0", children.Node().Name)
	require.True(t, children.Next())
	assert.Equal(t, 1, remote.CountCalls(mockremote.MethodListPage))
	require.True(t, children.Next())
	assert.Equal(t, 2, remote.CountCalls(mockremote.MethodListPage))
}

func TestChildrenPageError(t *testing.T) {
	remote := makeFolder(5)
	remote.PageSize = 2
	r := NewReader(remote, newPacer())

	children := r.Children(context.Background(), "parent")
	var got []*fs.Node
	require.True(t, children.Next())
	got = append(got, children.Node())
	require.True(t, children.Next())
	got = append(got, children.Node())

	// second page fails permanently
	remote.FailStatus(mockremote.MethodListPage, "parent", 1, 404)
	assert.False(t, children.Next())
	assert.Nil(t, children.Node())
	assert.False(t, children.Next())
	err := children.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, fserrors.ErrorNotFound))
	assert.Equal(t, "parent", fserrors.NodeID(err))
	assert.Equal(t, []string{"file 0", "file 1"}, names(got))

	// Reset reads from the start again
	children.Reset()
	assert.NoError(t, children.Err())
	var again []*fs.Node
	for children.Next() {
		again = append(again, children.Node())
	}
	require.NoError(t, children.Err())
	assert.Equal(t, 5, len(again))
}

func TestChildrenRetriesExhausted(t *testing.T) {
	remote := makeFolder(2)
	remote.FailStatus(mockremote.MethodListPage, "parent", 6, 500)
	r := NewReader(remote, newPacer())
	nodes, err := r.All(context.Background(), "parent")
	assert.Empty(t, nodes)
	assert.True(t, errors.Is(err, fserrors.ErrorRetriesExhausted))
	assert.Equal(t, 6, remote.CountCalls(mockremote.MethodListPage))
}

func TestChildrenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := NewReader(makeFolder(2), newPacer())
	nodes, err := r.All(ctx, "parent")
	assert.Empty(t, nodes)
	assert.True(t, errors.Is(err, context.Canceled))
}
