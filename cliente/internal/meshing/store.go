package meshing

import (
	"sync"
)

// templateKey identifica um template: modelo + rotação embutida + cor de tint.
// X/Y só são diferentes de zero para variants com uvlock.
type templateKey struct {
	Model  string
	X, Y   int
	UVLock bool
	Tint   [4]uint8
}

// TemplateStore armazena os templates de geometria do cenário atual.
type TemplateStore struct {
	mu        sync.RWMutex
	templates map[templateKey]*Template
}

// NewTemplateStore cria um novo repositório de templates.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{
		templates: make(map[templateKey]*Template),
	}
}

// Get retorna o template da chave, se existir.
func (s *TemplateStore) Get(key templateKey) (*Template, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[key]
	return t, ok
}

// Store salva um template. Se outro já ocupava a chave, o existente vence e o
// novo é descartado.
func (s *TemplateStore) Store(t *Template) *Template {
	s.mu.Lock()
	if existing, ok := s.templates[t.Key]; ok {
		s.mu.Unlock()
		t.Dispose()
		return existing
	}
	s.templates[t.Key] = t
	s.mu.Unlock()
	return t
}

// Len retorna quantos templates estão vivos.
func (s *TemplateStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates)
}

// Clear descarta todos os templates e esvazia o repositório. Retorna quantos foram liberados.
func (s *TemplateStore) Clear() int {
	s.mu.Lock()
	old := s.templates
	s.templates = make(map[templateKey]*Template)
	s.mu.Unlock()

	for _, t := range old {
		t.Dispose()
	}
	return len(old)
}
