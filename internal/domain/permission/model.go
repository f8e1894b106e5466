package permission

// RoleUnknown роль, назначаемая при неудачном поиске пользователя
const RoleUnknown = "unknown"

// Identity сохранённые данные пользователя, нужные для определения доступа
type Identity struct {
	UserID     string
	Role       string
	FacilityID string
}

// Scope область данных, доступная вызывающему
type Scope struct {
	Role                   string  `json:"role"`
	FacilityID             *string `json:"facilityId"`
	CanAccessAllFacilities bool    `json:"canAccessAllFacilities"`
}

// Empty true, если область не допускает ни одного учреждения
func (s Scope) Empty() bool {
	return !s.CanAccessAllFacilities && s.FacilityID == nil
}
