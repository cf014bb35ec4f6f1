package utils

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchBuffer(t *testing.T) {
	b := NewBatchBuffer[int]()
	assert.False(t, b.HasData())
	assert.Nil(t, b.GetAndClear())

	b.Add(1)
	b.Add(2)
	assert.True(t, b.HasData())
	assert.Equal(t, 2, b.Size())

	assert.Equal(t, []int{1, 2}, b.GetAndClear())
	assert.False(t, b.HasData())
	assert.Zero(t, b.Size())
}

func TestBatchBuffer_Full(t *testing.T) {
	b := NewBatchBuffer[string]()
	for i := 0; i < BATCH_SIZE-1; i++ {
		b.Add("x")
	}
	assert.False(t, b.Full())
	b.Add("x")
	assert.True(t, b.Full())
}

func TestBatchBuffer_ConcurrentAdd(t *testing.T) {
	b := NewBatchBuffer[int]()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Add(i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, b.GetAndClear(), 100)
}
