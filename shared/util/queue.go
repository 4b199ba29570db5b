package util

import "sync"

// UniqueQueue é uma fila FIFO thread-safe com no máximo um item por chave.
// Usada para pedidos de troca de estrutura: soltar o mesmo arquivo duas vezes
// antes da troca começar gera um único pedido, com o valor mais recente.
type UniqueQueue[K comparable, V any] struct {
	mu     sync.Mutex
	order  []K
	values map[K]V
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable, V any]() *UniqueQueue[K, V] {
	return &UniqueQueue[K, V]{values: make(map[K]V)}
}

// Enqueue adiciona o item no fim da fila. Se a chave já estiver esperando, só o
// valor é trocado e a posição se mantém. Retorna true se a chave era nova.
func (q *UniqueQueue[K, V]) Enqueue(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, waiting := q.values[key]
	q.values[key] = value
	if !waiting {
		q.order = append(q.order, key)
	}
	return !waiting
}

// Dequeue remove e retorna o primeiro item; false se a fila estiver vazia.
func (q *UniqueQueue[K, V]) Dequeue() (K, V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	key := q.order[0]
	q.order = q.order[1:]
	value := q.values[key]
	delete(q.values, key)
	return key, value, true
}

func (q *UniqueQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Contains indica se a chave está esperando na fila.
func (q *UniqueQueue[K, V]) Contains(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.values[key]
	return ok
}

// Clear descarta os pedidos pendentes.
func (q *UniqueQueue[K, V]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.order = nil
	clear(q.values)
}

// ThreadSafeQueue acumula itens de várias goroutines para um único consumidor.
// O app a usa para devolver trabalho ao thread da janela.
type ThreadSafeQueue[T any] struct {
	mu    sync.Mutex
	items []T
}

func NewThreadSafeQueue[T any]() *ThreadSafeQueue[T] {
	return &ThreadSafeQueue[T]{}
}

// Push adiciona um item ao fim da fila.
func (q *ThreadSafeQueue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Drain retira todos os itens de uma vez, na ordem de chegada.
// Itens empurrados durante o processamento ficam para o próximo Drain.
func (q *ThreadSafeQueue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *ThreadSafeQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
