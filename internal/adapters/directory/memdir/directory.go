package memdir

import (
	"context"
	"strings"
	"sync"

	"lifetag-access/internal/ports/directory"
)

// Directory es un directorio en memoria para dev y tests.
// Con permissive=true cualquier ID no vacío existe y no está bloqueado
// (modo dev sin servicio de directorio, análogo al modo sin verifier).
type Directory struct {
	mu         sync.RWMutex
	doctors    map[string]directory.Person
	patients   map[string]directory.Person
	permissive bool
}

func New() *Directory {
	return &Directory{
		doctors:  make(map[string]directory.Person),
		patients: make(map[string]directory.Person),
	}
}

// NewPermissive crea un directorio que acepta cualquier ID (modo dev).
// Los seeds explícitos (p.ej. un doctor bloqueado) igual tienen prioridad.
func NewPermissive() *Directory {
	d := New()
	d.permissive = true
	return d
}

func (d *Directory) AddDoctor(p directory.Person) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doctors[p.ID] = p
}

func (d *Directory) AddPatient(p directory.Person) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.patients[p.ID] = p
}

func (d *Directory) Doctor(ctx context.Context, id string) (directory.Person, error) {
	return d.lookup(d.doctors, id)
}

func (d *Directory) Patient(ctx context.Context, id string) (directory.Person, error) {
	return d.lookup(d.patients, id)
}

func (d *Directory) lookup(m map[string]directory.Person, id string) (directory.Person, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return directory.Person{}, directory.ErrNotFound
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if p, ok := m[id]; ok {
		return p, nil
	}
	if d.permissive {
		return directory.Person{ID: id}, nil
	}
	return directory.Person{}, directory.ErrNotFound
}
