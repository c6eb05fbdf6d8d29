package types

// OrderPaymentStatus mirrors the payment lifecycle of a commerce order
type OrderPaymentStatus string

const (
	OrderPaymentStatusPending           OrderPaymentStatus = "pending"
	OrderPaymentStatusPaid              OrderPaymentStatus = "paid"
	OrderPaymentStatusPartiallyRefunded OrderPaymentStatus = "partially_refunded"
	OrderPaymentStatusRefunded          OrderPaymentStatus = "refunded"
	OrderPaymentStatusCancelled         OrderPaymentStatus = "cancelled"
)
