package valueobject

type Role string

const (
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleWorker || r == RoleAdmin
}
