package services

import (
	"fmt"

	"solemate_backend/pkg/utils"
)

// Notifier delivers a customer-facing message to a phone number. The core
// dispatches notifications fire-and-forget: a delivery failure is logged
// and never rolls back or blocks the operation that triggered it.
type Notifier interface {
	Notify(phoneNumber, message string) error
}

// Customer-facing message templates.
const msgOrderReceived = "Order Received! We'll keep you posted on your repair."

func msgReadyForCollection(serial string) string {
	return fmt.Sprintf("Your shoes (%s) are ready for collection!", serial)
}

func msgPriceEstimate(price float64) string {
	return fmt.Sprintf("Repair cost estimation is %.2f", price)
}

// logNotifier writes notifications to the application log. It is the
// default when no WhatsApp session is configured.
type logNotifier struct{}

// NewLogNotifier returns a Notifier that only logs.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Notify(phoneNumber, message string) error {
	utils.LogInfo("WhatsApp notification (log only)", map[string]interface{}{
		"to":      phoneNumber,
		"message": message,
	})
	return nil
}
