package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jrsteele09/rxadmin/dashboard"
	"github.com/jrsteele09/rxadmin/internal/app"
	"github.com/jrsteele09/rxadmin/orders"
	"github.com/jrsteele09/rxadmin/tenants"
	"github.com/jrsteele09/rxadmin/users"
)

const dateFormat = "2006-01-02"

type userView users.User

func (v userView) headers() []string { return keyValues{}.headers() }

func (v userView) rows() [][]string {
	u := users.User(v)
	return keyValues{
		{"Name", u.DisplayName()},
		{"Email", u.Email},
		{"Role", string(u.Role)},
		{"Company", u.Tenant()},
	}.rows()
}

type statusView app.Status

func (v statusView) headers() []string { return keyValues{}.headers() }

func (v statusView) rows() [][]string {
	if !v.Authenticated || v.User == nil {
		return keyValues{{"Status", "not logged in"}}.rows()
	}
	kv := keyValues{
		{"Status", "logged in"},
		{"Name", v.User.DisplayName()},
		{"Email", v.User.Email},
		{"Role", string(v.User.Role)},
	}
	if tenant := v.User.Tenant(); tenant != "" {
		kv = append(kv, [2]string{"Company", tenant})
	}
	if !v.TokenExpires.IsZero() {
		kv = append(kv, [2]string{"Access token expires", v.TokenExpires.Local().Format(time.RFC1123)})
	}
	if !v.LastActiveAt.IsZero() {
		kv = append(kv, [2]string{"Last active", v.LastActiveAt.Local().Format(time.RFC1123)})
	}
	if v.IdleRemaining != "" {
		kv = append(kv, [2]string{"Idle logout in", v.IdleRemaining})
	}
	if v.Verified != nil {
		kv = append(kv, [2]string{"Server accepts token", yesNo(*v.Verified)})
	}
	return append(kv.rows(), keyValues{{"Sections", fmt.Sprint(v.Sections)}}.rows()...)
}

type statsView dashboard.Stats

func (v statsView) headers() []string { return []string{"Metric", "Total", "This month"} }

func (v statsView) rows() [][]string {
	var rows [][]string
	if v.Companies != nil {
		rows = append(rows,
			[]string{"Companies", strconv.Itoa(v.Companies.Total), strconv.Itoa(v.Companies.NewThisMonth)},
			[]string{"  active", strconv.Itoa(v.Companies.Active), ""},
			[]string{"  suspended", strconv.Itoa(v.Companies.Suspended), ""},
		)
	}
	rows = append(rows,
		[]string{"Users", strconv.Itoa(v.Users.Total), strconv.Itoa(v.Users.NewThisMonth)},
		[]string{"Patients", strconv.Itoa(v.Patients.Total), strconv.Itoa(v.Patients.NewThisMonth)},
		[]string{"Orders", strconv.Itoa(v.Orders.Total), strconv.Itoa(v.Orders.ThisMonth)},
		[]string{"  pending", strconv.Itoa(v.Orders.Pending), ""},
		[]string{"  processing", strconv.Itoa(v.Orders.Processing), ""},
		[]string{"Intakes", strconv.Itoa(v.Intakes.Total), strconv.Itoa(v.Intakes.NewThisMonth)},
		[]string{"  completed", strconv.Itoa(v.Intakes.Completed), ""},
		[]string{"  abandoned", strconv.Itoa(v.Intakes.Abandoned), ""},
		[]string{"Revenue", money(v.Revenue.Total), money(v.Revenue.ThisMonth)},
	)
	return rows
}

type tenantsView []tenants.Tenant

func (v tenantsView) headers() []string {
	return []string{"ID", "Name", "Status", "Email", "Patients", "Active orders", "Created"}
}

func (v tenantsView) rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, t := range v {
		rows = append(rows, []string{
			t.ID, t.Name, string(t.Status), t.Email,
			strconv.Itoa(t.PatientsCount), strconv.Itoa(t.ActiveOrders), date(t.CreatedAt),
		})
	}
	return rows
}

type tenantView tenants.Tenant

func (v tenantView) headers() []string { return keyValues{}.headers() }

func (v tenantView) rows() [][]string {
	kv := keyValues{
		{"ID", v.ID},
		{"Name", v.Name},
		{"Status", string(v.Status)},
		{"Email", v.Email},
		{"Phone", v.Phone},
		{"Website", v.Website},
		{"Address", joinNonEmpty(v.Address, v.City, v.State, v.ZipCode)},
		{"Colours", joinNonEmpty(v.PrimaryColor, v.SecondaryColor)},
		{"Patients", strconv.Itoa(v.PatientsCount)},
		{"Active orders", strconv.Itoa(v.ActiveOrders)},
		{"Created", date(v.CreatedAt)},
	}
	for _, m := range v.SupportedMedications {
		state := "disabled"
		if m.Enabled {
			state = "enabled"
		}
		kv = append(kv, [2]string{"Medication", fmt.Sprintf("%s %s (%s)", m.Name, money(m.Price), state)})
	}
	if v.APIKeys != nil {
		kv = append(kv, integrationView(v.APIKeys.Redacted())...)
	}
	return kv.rows()
}

type integrationsView tenants.IntegrationConfig

func (v integrationsView) headers() []string { return keyValues{}.headers() }

func (v integrationsView) rows() [][]string {
	return integrationView(tenants.IntegrationConfig(v)).rows()
}

func integrationView(cfg tenants.IntegrationConfig) keyValues {
	return keyValues{
		{"Curexa client key", cfg.Curexa.ClientKey},
		{"Curexa client secret", cfg.Curexa.ClientSecret},
		{"MDI client ID", cfg.MDI.ClientID},
		{"MDI client secret", cfg.MDI.ClientSecret},
		{"Stripe publishable key", cfg.Stripe.PublishableKey},
		{"Stripe secret key", cfg.Stripe.SecretKey},
	}
}

type ordersView []orders.Order

func (v ordersView) headers() []string {
	return []string{"ID", "Patient", "Medication", "Status", "Amount", "Refunded", "Created"}
}

func (v ordersView) rows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, o := range v {
		rows = append(rows, []string{
			o.ID, o.PatientName, o.MedicationName, string(o.Status),
			money(o.Amount), money(o.RefundedAmount), date(o.CreatedAt),
		})
	}
	return rows
}

type orderView orders.Order

func (v orderView) headers() []string { return keyValues{}.headers() }

func (v orderView) rows() [][]string {
	return keyValues{
		{"ID", v.ID},
		{"Company", v.CompanyID},
		{"Patient", joinNonEmpty(v.PatientName, v.PatientID)},
		{"Medication", v.MedicationName},
		{"Status", string(v.Status)},
		{"Amount", money(v.Amount)},
		{"Refunded", money(v.RefundedAmount)},
		{"Created", date(v.CreatedAt)},
		{"Updated", date(v.UpdatedAt)},
	}.rows()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 2, 64)
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(dateFormat)
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += p
	}
	return out
}
