package chat

import (
	"strings"
	"testing"

	"order_bot/internal/domain"
	"order_bot/internal/service"
)

func sampleView() *service.OrderView {
	return &service.OrderView{
		Order: domain.Order{
			ID:      "O1",
			Name:    "Friday lunch",
			Creator: "U1",
			Info:    "closes at 11:30",
			State:   domain.OrderStateOpen,
		},
		Items: []service.ItemView{
			{
				Name: "Burger", Price: 100, Amount: 3,
				Shares: []service.ParticipantShare{
					{Participant: domain.PlatformParticipant("U2"), Quantity: 2},
					{Participant: domain.FreeformParticipant("guest"), Quantity: 1},
				},
			},
		},
		TotalPrice:  300,
		TotalAmount: 3,
	}
}

func TestRenderOrderMessage(t *testing.T) {
	text := RenderOrderMessage(sampleView())

	for _, want := range []string{
		"*Friday lunch*",
		"訂單建立者: <@U1>",
		"closes at 11:30",
		":large_green_circle: 點餐中",
		"$100 Burger x3 (<@U2> x2、guest x1)",
		"*共 3 項，訂單金額總計: 300*",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q:\n%s", want, text)
		}
	}
}

func TestRenderOrderMessageClosedState(t *testing.T) {
	view := sampleView()
	view.Order.State = domain.OrderStateClosed

	text := RenderOrderMessage(view)
	if !strings.Contains(text, ":red_circle: 已收單") {
		t.Errorf("closed state line missing:\n%s", text)
	}
	if strings.Contains(text, "點餐中") {
		t.Error("open state line must not appear on a closed order")
	}
}

func TestRenderSettlement(t *testing.T) {
	entries := []domain.SettlementEntry{
		{Participant: domain.PlatformParticipant("U3"), TotalDue: 100, Breakdown: "Burger($100)*1"},
		{Participant: domain.FreeformParticipant("guest"), TotalDue: 60, Breakdown: "Cola($30)*2"},
	}

	text := RenderSettlement(entries)
	if !strings.HasPrefix(text, "統計:\n") {
		t.Errorf("settlement must start with the ledger header:\n%s", text)
	}
	if !strings.Contains(text, "$100 <@U3> (Burger($100)*1)") {
		t.Errorf("platform entry malformed:\n%s", text)
	}
	if !strings.Contains(text, "$60 guest (Cola($30)*2)") {
		t.Errorf("freeform entry must not be mention-wrapped:\n%s", text)
	}
}

func TestRenderRejection(t *testing.T) {
	adminErr := &domain.NotAuthorizedError{Actor: "U2", Creator: "U1", Action: "close order"}
	text := RenderRejection(adminErr, "U2")
	if !strings.Contains(text, "只有訂單建立者(<@U1>)") {
		t.Errorf("admin rejection malformed: %s", text)
	}

	mutErr := &domain.NotAuthorizedError{Actor: "U2", Creator: "U1", Action: "add item"}
	text = RenderRejection(mutErr, "U2")
	if !strings.Contains(text, "已收單") || !strings.Contains(text, "<@U1>") {
		t.Errorf("mutation rejection malformed: %s", text)
	}

	text = RenderRejection(domain.ErrEmptyOrder, "U1")
	if !strings.Contains(text, "訂單內沒有品項") {
		t.Errorf("empty-order rejection malformed: %s", text)
	}
}

func TestRenderHandover(t *testing.T) {
	text := RenderHandover("U1", "U5")
	if text != "訂單建立者<@U1>，已將權限轉給<@U5>" {
		t.Errorf("unexpected handover notice: %s", text)
	}
}

func TestSplitFreeform(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"guest", []string{"guest"}},
		{"amy, zed", []string{"amy", "zed"}},
		{"amy,,zed, ", []string{"amy", "zed"}},
	}
	for _, c := range cases {
		got := splitFreeform(c.in)
		if len(got) != len(c.want) {
			t.Errorf("splitFreeform(%q) = %v, want %v", c.in, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Errorf("splitFreeform(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
			}
		}
	}
}
