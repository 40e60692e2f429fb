package console

import "github.com/aretw0/slate/pkg/core"

// DefaultRoles returns the roles a fresh console starts with.
func DefaultRoles() []core.Role {
	return []core.Role{
		{
			Code:        "ADMIN_ROOT",
			Name:        "Administrador Root",
			Description: "Acceso total a todas las funciones del sistema, incluyendo gestión de usuarios y roles.",
		},
		{
			Code:        "PERM_VIEW_USERS",
			Name:        "VER_USUARIOS",
			Description: "Permiso para visualizar la lista de usuarios en la plataforma.",
		},
		{
			Code:        "PERM_CREATE_ROLE",
			Name:        "CREAR_ROL",
			Description: "Permiso para crear y configurar nuevos roles en la plataforma.",
		},
		{
			Code:        "USER_STANDARD",
			Name:        "Usuario Estándar",
			Description: "Acceso básico a las funcionalidades de la aplicación como usuario final.",
		},
	}
}

// DefaultUsers returns the users a fresh console starts with.
func DefaultUsers() []core.User {
	return []core.User{
		{
			ID:     "1",
			Code:   "ADMIN_SISTEMA",
			Name:   "Admin Sistema",
			Email:  "admin@sistema.com",
			Status: core.StatusActive,
			Roles:  []string{"ADMIN_ROOT", "PERM_VIEW_USERS"},
		},
		{
			ID:     "2",
			Code:   "JUAN_PEREZ",
			Name:   "Juan Perez",
			Email:  "juan.perez@empresa.com",
			Status: core.StatusActive,
			Roles:  []string{"USER_STANDARD"},
		},
		{
			ID:     "3",
			Code:   "MARIA_GARCIA",
			Name:   "Maria Garcia",
			Email:  "maria.garcia@ventas.com",
			Status: core.StatusInactive,
			Roles:  []string{"USER_STANDARD"},
		},
		{
			ID:     "4",
			Code:   "SOPORTE_TECNICO",
			Name:   "Soporte Tecnico",
			Email:  "soporte.tecnico@it.com",
			Status: core.StatusPending,
			Roles:  []string{"PERM_VIEW_USERS"},
		},
	}
}
