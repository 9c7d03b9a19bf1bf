package domain

import "fmt"

// Dashboard is the landing page a role is routed to after login.
type Dashboard string

const (
	AdminDashboard    Dashboard = "admin_dashboard"
	CustomerDashboard Dashboard = "customer_dashboard"
	DeliveryDashboard Dashboard = "delivery_dashboard"
)

// Dashboards lists every dashboard in routing order.
var Dashboards = []Dashboard{AdminDashboard, CustomerDashboard, DeliveryDashboard}

// RequiredRole is the only role allowed to open d.
func (d Dashboard) RequiredRole() Role {
	switch d {
	case AdminDashboard:
		return RoleAdmin
	case CustomerDashboard:
		return RoleCustomer
	case DeliveryDashboard:
		return RoleDelivery
	}
	panic(fmt.Sprintf("domain: unknown dashboard %q", string(d)))
}

// Path is the HTTP route serving d.
func (d Dashboard) Path() string {
	switch d {
	case AdminDashboard:
		return "/admin/dashboard"
	case CustomerDashboard:
		return "/customer/dashboard"
	case DeliveryDashboard:
		return "/delivery/dashboard"
	}
	panic(fmt.Sprintf("domain: unknown dashboard %q", string(d)))
}

// DashboardFor selects the dashboard owned by role.
func DashboardFor(role Role) (Dashboard, error) {
	switch role {
	case RoleAdmin:
		return AdminDashboard, nil
	case RoleCustomer:
		return CustomerDashboard, nil
	case RoleDelivery:
		return DeliveryDashboard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, string(role))
}

// RouteAfterLogin picks the dashboard an authenticated identity lands on.
func RouteAfterLogin(id Identity) (Dashboard, error) {
	return DashboardFor(id.Role)
}

// CanAccess reports whether id may open d. Roles must match exactly; admin is
// not a superset of the other roles.
func CanAccess(id Identity, d Dashboard) bool {
	return id.Role.IsValid() && id.Role == d.RequiredRole()
}
