package models

// MenuItem is one entry of the static, role-annotated navigation
// configuration. Changes to the list are a deployment concern.
type MenuItem struct {
	Label  string     `json:"label"`
	Target string     `json:"target"`
	Icon   string     `json:"icon"`
	Roles  []UserRole `json:"-"`
}

// VisibleTo reports whether the item is shown to the given role. RoleUnknown
// never matches a gated item.
func (m MenuItem) VisibleTo(role UserRole) bool {
	if !role.Known() {
		return false
	}
	for _, allowed := range m.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// Navigation is the versioned navigation item list consumed by the menu
// service. Visibility mirrors the list routes' RBAC configuration.
var Navigation = []MenuItem{
	{Label: "Home", Target: "/", Icon: "home", Roles: []UserRole{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}},
	{Label: "Teachers", Target: "/list/teachers", Icon: "teacher", Roles: []UserRole{RoleAdmin, RoleTeacher}},
	{Label: "Students", Target: "/list/students", Icon: "student", Roles: []UserRole{RoleAdmin, RoleTeacher}},
	{Label: "Parents", Target: "/list/parents", Icon: "parent", Roles: []UserRole{RoleAdmin, RoleTeacher}},
	{Label: "Subjects", Target: "/list/subjects", Icon: "subject", Roles: []UserRole{RoleAdmin}},
	{Label: "Classes", Target: "/list/classes", Icon: "class", Roles: []UserRole{RoleAdmin, RoleTeacher}},
	{Label: "Lessons", Target: "/list/lessons", Icon: "lesson", Roles: []UserRole{RoleAdmin, RoleTeacher}},
	{Label: "Exams", Target: "/list/exams", Icon: "exam", Roles: []UserRole{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}},
	{Label: "Assignments", Target: "/list/assignments", Icon: "assignment", Roles: []UserRole{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}},
	{Label: "Results", Target: "/list/results", Icon: "result", Roles: []UserRole{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}},
	{Label: "Attendance", Target: "/list/attendance", Icon: "attendance", Roles: []UserRole{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}},
}
