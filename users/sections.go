package users

// Section is a navigable area of the admin console.
type Section string

const (
	SectionDashboard           Section = "dashboard"
	SectionCompanies           Section = "companies"
	SectionMedications         Section = "medications"
	SectionSupport             Section = "support"
	SectionMedicationOfferings Section = "medication-offerings"
	SectionOrders              Section = "orders"
	SectionPatients            Section = "patients"
	SectionSettings            Section = "settings"
)

var sharedSections = []Section{SectionOrders, SectionPatients, SectionSettings}

var roleSections = map[Role][]Section{
	RoleSuperAdmin:   {SectionDashboard, SectionCompanies, SectionMedications, SectionSupport},
	RoleCompanyAdmin: {SectionDashboard, SectionMedicationOfferings},
}

// Sections lists what the role may open, role specific sections first.
func (r Role) Sections() []Section {
	own, ok := roleSections[r]
	if !ok {
		return nil
	}
	sections := make([]Section, 0, len(own)+len(sharedSections))
	sections = append(sections, own...)
	return append(sections, sharedSections...)
}

func (r Role) CanAccess(section Section) bool {
	for _, s := range r.Sections() {
		if s == section {
			return true
		}
	}
	return false
}

// CanAccess is false for a nil user: no session, no sections.
func (u *User) CanAccess(section Section) bool {
	if u == nil {
		return false
	}
	return u.Role.CanAccess(section)
}
