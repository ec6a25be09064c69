package keymutex

import (
	"fmt"
	"sync"
	"testing"
)

func TestSameKeySerializes(t *testing.T) {
	m := New(8)
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("chat-1")
			defer m.Unlock("chat-1")
			counter++
		}()
	}
	wg.Wait()
	if counter != 200 {
		t.Fatalf("counter = %d, want 200", counter)
	}
}

func TestDifferentShardsDoNotBlockEachOther(t *testing.T) {
	m := New(64)

	// 找一个与 chat-a 不同分片的 key
	other := ""
	for i := 0; i < 1000; i++ {
		k := fmt.Sprintf("chat-%d", i)
		if m.index(k) != m.index("chat-a") {
			other = k
			break
		}
	}
	if other == "" {
		t.Fatal("could not find key in a different shard")
	}

	m.Lock("chat-a")
	defer m.Unlock("chat-a")

	done := make(chan struct{})
	go func() {
		m.Lock(other)
		m.Unlock(other)
		close(done)
	}()
	<-done
}
