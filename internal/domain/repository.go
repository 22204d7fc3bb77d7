package domain

// CustomerRepository описывает требования к справочнику клиентов.
// Реализации заполняют ID и таймстемпы при создании записи.
type CustomerRepository interface {
	// Create сохраняет нового клиента и возвращает запись с заполненным ID.
	// Возвращает ErrEmailAlreadyRegistered, если email уже занят.
	Create(customer Customer) (Customer, error)
	// GetByID возвращает клиента или ErrCustomerNotFound, если его нет.
	GetByID(id string) (Customer, error)
	// GetByEmail возвращает клиента по email или ErrCustomerNotFound.
	GetByEmail(email string) (Customer, error)
}

// ProductRepository описывает требования к каталогу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар и возвращает запись с заполненным ID.
	Create(product Product) (Product, error)
	// GetByID возвращает товар или ErrProductNotFound, если его нет.
	GetByID(id string) (Product, error)
	// FindAllByIDs возвращает только существующие товары из списка.
	// Порядок результата не гарантируется, дубликаты во входе игнорируются.
	FindAllByIDs(ids []string) ([]Product, error)
	// List возвращает весь каталог, отсортированный по имени.
	List() ([]Product, error)
	// DecrementStock атомарно списывает остатки по всем позициям.
	// Списание условное: если хотя бы по одной позиции остаток меньше
	// запрошенного, ни одно изменение не применяется и возвращается
	// ErrStockConflict (или ErrProductNotFound для отсутствующего товара).
	DecrementStock(changes []StockChange) error
	// RestoreStock возвращает ранее списанные остатки (компенсация).
	RestoreStock(changes []StockChange) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями и возвращает запись
	// с заполненными ID и таймстемпами.
	Create(order Order) (Order, error)
	// Get возвращает заказ по идентификатору или ErrOrderNotFound, если его нет.
	Get(id string) (Order, error)
}
