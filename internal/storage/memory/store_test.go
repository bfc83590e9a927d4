package memory

import (
	"testing"

	"github.com/pablasso/smartplan/internal/storage"
	"github.com/pablasso/smartplan/internal/storage/storagetest"
)

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		return New()
	})
}
