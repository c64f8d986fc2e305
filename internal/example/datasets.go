package example

import "slices"

// Template ids the datasets belong to.
const (
	DefaultTemplate   = "default"
	CustomersTemplate = "customers"
)

// Table ids used by the customers view.
const (
	CustomersTableID = "customers"
	UsersTableID     = "users"
)

var elementColumns = []Column{
	{Label: "Element", Accessor: "element"},
	{Label: "Weight", Accessor: "weight"},
}

var elements = []Row{
	{"element": "Hydrogen", "weight": "1.008"},
	{"element": "Helium", "weight": "4.0026"},
}

var customerColumns = []Column{
	{Label: "ID", Accessor: "id"},
	{Label: "Name", Accessor: "name"},
	{Label: "Country", Accessor: "country"},
}

var customers = []Row{
	{"id": "0", "name": "Acme Corporation", "country": "United States"},
	{"id": "1", "name": "Globex", "country": "Germany"},
}

var userColumns = []Column{
	{Label: "ID", Accessor: "id"},
	{Label: "Customer ID", Accessor: "customer_id"},
	{Label: "Name", Accessor: "name"},
	{Label: "Role", Accessor: "role"},
	{Label: "Email", Accessor: "email"},
}

var users = []Row{
	{"id": "0", "customer_id": "0", "name": "Wile E. Coyote", "role": "Admin", "email": "wile@acme.example"},
	{"id": "1", "customer_id": "0", "name": "Road Runner", "role": "Viewer", "email": "roadrunner@acme.example"},
	{"id": "2", "customer_id": "0", "name": "Marvin Martian", "role": "Editor", "email": "marvin@acme.example"},
	{"id": "3", "customer_id": "1", "name": "Hank Scorpio", "role": "Admin", "email": "hank@globex.example"},
	{"id": "4", "customer_id": "1", "name": "Homer Simpson", "role": "Viewer", "email": "homer@globex.example"},
	{"id": "5", "customer_id": "1", "name": "Frank Grimes", "role": "Editor", "email": "frank@globex.example"},
	{"id": "6", "customer_id": "1", "name": "Lenny Leonard", "role": "Viewer", "email": "lenny@globex.example"},
}

// DefaultView returns the single-table elements example.
func DefaultView() View {
	return View{
		TemplateID: DefaultTemplate,
		Title:      "Elements",
		Text:       "An example view that showcases elements and their weights.",
		Tables: []Table{{
			Title:   "Elements Table",
			Columns: slices.Clone(elementColumns),
			Rows:    cloneRows(elements),
		}},
	}
}

// CustomersView returns the master-detail example: a customers table and a
// users table filtered by the selected customer.
func CustomersView() View {
	return View{
		TemplateID: CustomersTemplate,
		Title:      "Customers",
		Text:       "An example view that showcases customers and users. Select a customer to see its users.",
		Tables: []Table{
			{
				ID:           CustomersTableID,
				Title:        "Customers",
				Columns:      slices.Clone(customerColumns),
				Rows:         cloneRows(customers),
				RowSelection: RowSelectionSingle,
			},
			{
				ID:            UsersTableID,
				Title:         "Users",
				Columns:       slices.Clone(userColumns),
				Rows:          cloneRows(users),
				HiddenColumns: []string{"customer_id"},
			},
		},
		Link: &MasterDetail{
			Master:     CustomersTableID,
			Detail:     UsersTableID,
			PrimaryKey: "id",
			ForeignKey: "customer_id",
		},
	}
}

// Views returns every example view in template order.
func Views() []View {
	return []View{DefaultView(), CustomersView()}
}

// ForTemplate returns the example view rendered by the given template id.
func ForTemplate(id string) (View, bool) {
	for _, v := range Views() {
		if v.TemplateID == id {
			return v, true
		}
	}
	return View{}, false
}
