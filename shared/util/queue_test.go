package util

import (
	"sync"
	"testing"
)

func TestUniqueQueueCoalesces(t *testing.T) {
	q := NewUniqueQueue[string, int]()
	if !q.Enqueue("a.json", 1) {
		t.Fatal("primeiro Enqueue deveria adicionar")
	}
	q.Enqueue("b.json", 2)
	if q.Enqueue("a.json", 3) {
		t.Fatal("chave repetida deveria só atualizar o valor")
	}
	if q.Len() != 2 {
		t.Fatalf("Len = %d, esperado 2", q.Len())
	}

	k, v, ok := q.Dequeue()
	if !ok || k != "a.json" || v != 3 {
		t.Fatalf("Dequeue = %q %d %v, esperado a.json 3 true", k, v, ok)
	}
	if q.Contains("a.json") {
		t.Fatal("a.json não deveria estar mais na fila")
	}
	// Depois de sair, a chave pode voltar
	if !q.Enqueue("a.json", 4) {
		t.Fatal("chave removida deveria poder voltar")
	}

	q.Enqueue("c.json", 5)
	if k, _, _ := q.Dequeue(); k != "b.json" {
		t.Fatalf("Dequeue = %q, esperado b.json (ordem de chegada)", k)
	}

	q.Clear()
	if _, _, ok := q.Dequeue(); ok {
		t.Fatal("fila deveria estar vazia após Clear")
	}
}

func TestThreadSafeQueueOrder(t *testing.T) {
	q := NewThreadSafeQueue[int]()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(j)
			}
		}()
	}
	wg.Wait()
	if q.Len() != 800 {
		t.Fatalf("Len = %d, esperado 800", q.Len())
	}
	if n := len(q.Drain()); n != 800 {
		t.Fatalf("Drain retornou %d itens, esperado 800", n)
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Fatal("fila deveria estar vazia após Drain")
	}
}

func TestSizeCenter(t *testing.T) {
	tests := []struct {
		size Size
		want [3]float32
	}{
		{Size{1, 1, 1}, [3]float32{0, 0, 0}},
		{Size{2, 1, 1}, [3]float32{-0.5, 0, 0}},
		{Size{3, 4, 5}, [3]float32{-1, -1.5, -2}},
	}
	for _, tt := range tests {
		if got := tt.size.Center(); got != tt.want {
			t.Errorf("%v.Center() = %v, esperado %v", tt.size, got, tt.want)
		}
	}
}
