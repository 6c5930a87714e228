package console

import "spacerh.dev/internal/hr"

// MenuItem is one entry of the shell navigation. A nil Roles slice
// means every authenticated role sees the entry; an empty slice hides
// it from everyone.
type MenuItem struct {
	Label string
	Path  string
	Roles []hr.Role
}

// DefaultMenu returns the full navigation in display order.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{Label: "Dashboard", Path: "/dashboard"},
		{Label: "Usuários", Path: "/usuarios", Roles: []hr.Role{hr.RoleAdmin}},
		{Label: "Empresas", Path: "/empresas", Roles: []hr.Role{hr.RoleAdmin}},
		{Label: "Solicitações", Path: "/solicitacoes", Roles: []hr.Role{hr.RoleAdmin, hr.RoleLider}},
		{Label: "Relatórios", Path: "/relatorios", Roles: []hr.Role{hr.RoleAdmin, hr.RoleLider}},
		{Label: "Configurações", Path: "/configuracoes", Roles: []hr.Role{}},
		{Label: "Meu Perfil", Path: "/perfil"},
	}
}

// VisibleItems filters the menu for a role without mutating the input.
func VisibleItems(role hr.Role, items []MenuItem) []MenuItem {
	out := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if item.Roles == nil {
			out = append(out, item)
			continue
		}
		for _, allowed := range item.Roles {
			if allowed == role {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
