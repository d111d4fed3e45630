package model

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPosition_String(t *testing.T) {
	assert.Equal(t, "(1,2,3)", NewPosition(1, 2, 3).String())
	assert.Equal(t, NewPosition(1, 2, 3), Position{X: 1, Y: 2, Z: 3})
}

func TestItem_StatusAndPosition(t *testing.T) {
	item := NewItem("ITEM-001", "Product 1", 2.5, NewPosition(0, 0, 0))
	assert.Equal(t, ItemAvailable, item.Status())

	prev := item.SetStatus(ItemMoving)
	assert.Equal(t, ItemAvailable, prev)
	assert.Equal(t, ItemMoving, item.Status())

	item.MoveTo(NewPosition(3, 1, 2))
	assert.Equal(t, NewPosition(3, 1, 2), item.Position())
}

func TestItem_ClaimIsExclusive(t *testing.T) {
	item := NewItem("ITEM-002", "Product 2", 1, NewPosition(0, 0, 0))
	release := item.Claim()

	var wg sync.WaitGroup
	acquired := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		r := item.Claim()
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second claim succeeded while the first was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	wg.Wait()
}
