package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/closer/internal/storage"
	"github.com/MrJamesThe3rd/closer/internal/storage/memory"
	"github.com/MrJamesThe3rd/closer/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, memory.New())
}

func TestStore_CopiesPayloads(t *testing.T) {
	s := memory.New()
	payload := []byte(`[1]`)

	require.NoError(t, s.Save(context.Background(), map[storage.Collection][]byte{storage.Deals: payload}))
	payload[1] = '2'

	got, err := s.Load(context.Background(), storage.Deals)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}
