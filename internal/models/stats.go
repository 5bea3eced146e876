package models

type DashboardStats struct {
	UsersCount       int       `json:"usersCount"`
	ProductsCount    int       `json:"productsCount"`
	OrdersCount      int       `json:"ordersCount"`
	TotalSales       float64   `json:"totalSales"`
	RecentOrders     []Order   `json:"recentOrders"`
	LowStockProducts []Product `json:"lowStockProducts"`
}
