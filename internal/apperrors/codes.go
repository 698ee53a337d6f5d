package apperrors

// Коды ошибок сгруппированные по доменам
const (
	// Аутентификация и авторизация
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"

	// Валидация
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeUnknownPlan      ErrorCode = "UNKNOWN_PLAN"

	// Ресурсы
	CodeUserNotFound     ErrorCode = "USER_NOT_FOUND"
	CodeInvoicesNotFound ErrorCode = "INVOICES_NOT_FOUND"

	// Платежный шлюз
	CodeGatewayNotConfigured ErrorCode = "GATEWAY_NOT_CONFIGURED"
	CodeGatewayRequestFailed ErrorCode = "GATEWAY_REQUEST_FAILED"
	CodeGatewayProtocolError ErrorCode = "GATEWAY_PROTOCOL_ERROR"

	// Сверка уведомлений
	CodeWebhookSecretInvalid ErrorCode = "WEBHOOK_SECRET_INVALID"
	CodeAmountMismatch       ErrorCode = "AMOUNT_MISMATCH"
	CodeInvalidPayload       ErrorCode = "INVALID_PAYLOAD"

	// Системные ошибки
	CodeInternalError ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError ErrorCode = "DATABASE_ERROR"
)
