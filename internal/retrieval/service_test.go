package retrieval_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"vocatus/backend/internal/retrieval"
	"vocatus/backend/internal/vector"
)

type MockEmbedder struct{ mock.Mock }

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func savedStore(t *testing.T, vectors [][]float32, chunks []string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "store")
	idx := vector.NewFlat(0)
	for _, v := range vectors {
		vector.Normalize(v)
	}
	require.NoError(t, idx.Add(vectors))
	require.NoError(t, vector.SaveStore(dir, idx, chunks))
	return dir
}

func TestService_Retrieve(t *testing.T) {
	dir := savedStore(t,
		[][]float32{{1, 0}, {0, 1}, {0.9, 0.1}},
		[]string{"pale ale notes", "stout notes", "amber notes"},
	)

	emb := new(MockEmbedder)
	emb.On("Embed", mock.Anything, "what pairs with ale").Return([]float32{1, 0}, nil)

	svc := retrieval.NewService(emb, dir, nil)
	got, err := svc.Retrieve(context.Background(), "what pairs with ale", 2)
	require.NoError(t, err)

	assert.Equal(t, "pale ale notes\n\namber notes", got)
	emb.AssertExpectations(t)
}

func TestService_Retrieve_EmptyIndex(t *testing.T) {
	dir := savedStore(t, nil, nil)

	emb := new(MockEmbedder)
	svc := retrieval.NewService(emb, dir, nil)

	got, err := svc.Retrieve(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	emb.AssertNotCalled(t, "Embed")
}

func TestService_Retrieve_MissingStore(t *testing.T) {
	emb := new(MockEmbedder)
	svc := retrieval.NewService(emb, filepath.Join(t.TempDir(), "absent"), nil)

	_, err := svc.Retrieve(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, vector.ErrCorruptStore)

	// The failed load is memoized but still reported on later calls.
	_, err = svc.Retrieve(context.Background(), "again", 3)
	assert.ErrorIs(t, err, vector.ErrCorruptStore)
}

func TestService_Retrieve_EmbedderError(t *testing.T) {
	dir := savedStore(t, [][]float32{{1, 0}}, []string{"chunk"})

	emb := new(MockEmbedder)
	emb.On("Embed", mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

	svc := retrieval.NewService(emb, dir, nil)
	_, err := svc.Retrieve(context.Background(), "q", 1)
	assert.ErrorContains(t, err, "rate limited")
}

func TestService_Retrieve_KLargerThanIndex(t *testing.T) {
	dir := savedStore(t, [][]float32{{1, 0}, {0, 1}}, []string{"a", "b"})

	emb := new(MockEmbedder)
	emb.On("Embed", mock.Anything, "q").Return([]float32{1, 0}, nil)

	svc := retrieval.NewService(emb, dir, nil)
	got, err := svc.Retrieve(context.Background(), "q", 10)
	require.NoError(t, err)
	assert.Equal(t, "a\n\nb", got)
}

func TestService_IndexSize(t *testing.T) {
	dir := savedStore(t, [][]float32{{1, 0}, {0, 1}}, []string{"a", "b"})

	svc := retrieval.NewService(new(MockEmbedder), dir, nil)
	rows, dim, err := svc.IndexSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, dim)
}

func TestService_IndexSize_MissingStore(t *testing.T) {
	svc := retrieval.NewService(new(MockEmbedder), filepath.Join(t.TempDir(), "absent"), nil)

	_, _, err := svc.IndexSize(context.Background())
	assert.ErrorIs(t, err, vector.ErrCorruptStore)
}

func TestService_Retrieve_ConcurrentFirstCalls(t *testing.T) {
	dir := savedStore(t, [][]float32{{1, 0}}, []string{"only chunk"})

	emb := new(MockEmbedder)
	emb.On("Embed", mock.Anything, "q").Return([]float32{1, 0}, nil)

	svc := retrieval.NewService(emb, dir, nil)

	var wg sync.WaitGroup
	results := make([]string, 20)
	for i := range results {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			got, err := svc.Retrieve(context.Background(), "q", 1)
			assert.NoError(t, err)
			results[n] = got
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "only chunk", got)
	}
}
