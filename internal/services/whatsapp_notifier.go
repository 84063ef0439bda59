package services

import (
	"context"
	"fmt"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"solemate_backend/pkg/utils"
)

// WhatsAppNotifier sends messages through a paired WhatsApp session. The
// session store lives in the same Postgres database as the application data.
type WhatsAppNotifier struct {
	client *whatsmeow.Client
}

// NewWhatsAppNotifier initializes the whatsmeow session container on the
// given Postgres DSN and prepares a client for the first stored device.
func NewWhatsAppNotifier(dsn string) (*WhatsAppNotifier, error) {
	ctx := context.Background()
	dbLog := waLog.Stdout("Database", "ERROR", true)

	container, err := sqlstore.New(ctx, "postgres", dsn, dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to init WhatsApp session store: %w", err)
	}
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade WhatsApp session schema: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get WhatsApp device: %w", err)
	}

	clientLog := waLog.Stdout("Client", "INFO", true)
	client := whatsmeow.NewClient(deviceStore, clientLog)

	return &WhatsAppNotifier{client: client}, nil
}

// Connect establishes the WhatsApp connection. On a fresh device it prints
// the pairing QR code to the console and waits for the scan.
func (n *WhatsAppNotifier) Connect() error {
	if n.client.Store.ID == nil {
		qrChan, _ := n.client.GetQRChannel(context.Background())
		if err := n.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect to WhatsApp: %w", err)
		}

		for evt := range qrChan {
			if evt.Event == "code" {
				utils.LogInfo("Scan this QR code in WhatsApp to pair", map[string]interface{}{"code": evt.Code})
			} else if evt.Event == "success" {
				utils.LogInfo("WhatsApp pairing successful")
				break
			}
		}
		return nil
	}

	if err := n.client.Connect(); err != nil {
		return fmt.Errorf("failed to reconnect to WhatsApp: %w", err)
	}
	return nil
}

// Notify sends a plain text message to the given phone number.
func (n *WhatsAppNotifier) Notify(phoneNumber, message string) error {
	if n.client == nil {
		return fmt.Errorf("WhatsApp client not initialized")
	}

	jid := types.NewJID(phoneNumber, "s.whatsapp.net")
	msg := &waProto.Message{
		Conversation: proto.String(message),
	}

	_, err := n.client.SendMessage(context.Background(), jid, msg)
	return err
}

// Disconnect tears down the WhatsApp connection.
func (n *WhatsAppNotifier) Disconnect() {
	if n.client != nil {
		n.client.Disconnect()
	}
}
