package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

// DBContextKey - это ключ, по которому мы будем хранить *gorm.DB в context.
// Тесты кладут сюда транзакцию, чтобы откатывать изменения после каждого кейса.
const DBContextKey = contextKey("db")
