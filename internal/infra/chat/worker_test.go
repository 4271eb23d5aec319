package chat

import (
	"testing"

	"order_bot/internal/domain"
	"order_bot/internal/event"
)

func testWorker(inbox chan *event.Command) *Worker {
	return &Worker{inbox: inbox}
}

func TestHandleMessageDecodesCommand(t *testing.T) {
	inbox := make(chan *event.Command, 1)
	w := testWorker(inbox)

	frame := `{
		"type": "command",
		"op": "upsert_item",
		"channel_id": "C1",
		"message_id": "1699999999.000100",
		"user_id": "U2",
		"metadata": {
			"order_name": "Friday lunch",
			"order_creator": "U1",
			"order_state": "Open",
			"order_details": {}
		},
		"payload": {
			"item_name": "Burger",
			"price": "100",
			"quantity": "2",
			"platform_users": ["U2", "U3"],
			"freeform_users": "guest, amy"
		}
	}`
	w.handleMessage([]byte(frame))

	select {
	case cmd := <-inbox:
		defer event.ReleaseCommand(cmd)
		if cmd.Op != event.OpUpsertItem {
			t.Errorf("unexpected op: %s", cmd.Op)
		}
		if cmd.OrderID != "1699999999.000100" || cmd.ChannelID != "C1" || cmd.Actor != "U2" {
			t.Errorf("routing fields wrong: %+v", cmd)
		}
		if cmd.Snapshot == nil || cmd.Snapshot.OrderCreator != "U1" {
			t.Error("snapshot metadata lost in decode")
		}
		if cmd.ItemName != "Burger" || cmd.Price != "100" || cmd.Quantity != "2" {
			t.Errorf("payload fields wrong: %+v", cmd)
		}
		if len(cmd.PlatformUsers) != 2 {
			t.Errorf("platform users wrong: %v", cmd.PlatformUsers)
		}
		if len(cmd.FreeformUsers) != 2 || cmd.FreeformUsers[1] != "amy" {
			t.Errorf("freeform users wrong: %v", cmd.FreeformUsers)
		}
	default:
		t.Fatal("command did not reach the inbox")
	}
}

func TestHandleMessageIgnoresNonCommands(t *testing.T) {
	inbox := make(chan *event.Command, 1)
	w := testWorker(inbox)

	w.handleMessage([]byte(`{"type": "ping"}`))
	w.handleMessage([]byte(`{"type": "hello"}`))
	w.handleMessage([]byte(`not json`))

	if len(inbox) != 0 {
		t.Error("non-command frames must not produce commands")
	}
}

func TestHandleMessageShedsWhenInboxFull(t *testing.T) {
	inbox := make(chan *event.Command) // unbuffered, no reader
	w := testWorker(inbox)

	// Must not block.
	w.handleMessage([]byte(`{"type": "command", "op": "show_order", "message_id": "O1"}`))
}

func TestHandleMessageOpenOrderNeedsNoSnapshot(t *testing.T) {
	inbox := make(chan *event.Command, 1)
	w := testWorker(inbox)

	frame := `{
		"type": "command",
		"op": "open_order",
		"channel_id": "C1",
		"message_id": "O1",
		"user_id": "U1",
		"payload": {"order_name": "lunch", "order_info": "info"}
	}`
	w.handleMessage([]byte(frame))

	cmd := <-inbox
	defer event.ReleaseCommand(cmd)
	if cmd.Snapshot != nil {
		t.Error("open_order carries no snapshot")
	}
	if cmd.OrderState != domain.OrderState("") {
		t.Errorf("unexpected order state: %s", cmd.OrderState)
	}
	if cmd.OrderName != "lunch" {
		t.Errorf("unexpected order name: %s", cmd.OrderName)
	}
}
