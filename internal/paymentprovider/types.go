package paymentprovider

// price ответ Stripe на создание цены.
type price struct {
	ID string `json:"id"`
}

// checkoutSession ответ Stripe с данными сессии оплаты.
type checkoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

// apiError тело ошибки Stripe.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
