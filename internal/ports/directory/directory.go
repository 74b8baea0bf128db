package directory

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("directory: not found")

// Person es la vista mínima que este servicio necesita del directorio
// externo de usuarios: existencia + bloqueo. Los perfiles completos
// (grados, hospitales, edad, etc.) viven en el servicio de directorio.
type Person struct {
	ID       string
	FullName string
	Blocked  bool
}

// Directory resuelve doctores y pacientes por ID.
type Directory interface {
	Doctor(ctx context.Context, id string) (Person, error)
	Patient(ctx context.Context, id string) (Person, error)
}
