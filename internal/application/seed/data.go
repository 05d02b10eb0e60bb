package seed

type productSeed struct {
	Name          string
	SKU           string
	Category      string
	Stock         int64
	UnitOfMeasure string
}

type warehouseSeed struct {
	Name     string
	Location string
	Capacity int64
}

type partnerSeed struct {
	Name    string
	Address string
	Email   string
}

// mainWarehouse recibe todo el stock inicial.
const mainWarehouse = "Main Warehouse"

var categories = []struct{ Name, Description string }{
	{"Fruits", "Fresh fruit"},
	{"Vegetables", "Fresh vegetables"},
	{"Dairy", "Milk, cheese and other dairy products"},
	{"Bakery", "Bread and baked goods"},
	{"Meat", "Fresh meat and poultry"},
}

var products = []productSeed{
	{"Organic Bananas", "FR-BAN-001", "Fruits", 1500, "kg"},
	{"Fresh Tomatoes", "VG-TOM-001", "Vegetables", 250, "kg"},
	{"Whole Milk 1L", "DR-MLK-001", "Dairy", 800, "units"},
	{"Sourdough Bread", "BK-BRD-001", "Bakery", 75, "units"},
	{"Chicken Breast", "MT-CHK-001", "Meat", 120, "kg"},
	{"Avocado", "FR-AVO-001", "Fruits", 45, "units"},
	{"Cheddar Cheese", "DR-CHS-001", "Dairy", 35, "kg"},
}

var warehouses = []warehouseSeed{
	{mainWarehouse, "123 Industrial Rd, City A", 10000},
	{"Cold Storage Unit", "456 Cold St, City A", 5000},
	{"Retail Backroom", "789 Market St, City B", 2000},
}

var suppliers = []partnerSeed{
	{Name: "Global Fresh Produce", Email: "contact@globalfresh.com"},
	{Name: "Dairy Best Farms", Email: "sales@dairybest.com"},
	{Name: "Artisan Breads Co.", Email: "orders@artisanbreads.com"},
}

var customers = []partnerSeed{
	{"Corner Cafe", "101 Maple St, City A", "purchase@cornercafe.com"},
	{"The Grand Bistro", "202 Oak Ave, City B", "chef@grandbistro.com"},
	{"Healthy Eats Grocer", "303 Pine Ln, City A", "stock@healthyeats.com"},
}
