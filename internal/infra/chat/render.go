package chat

import (
	"errors"
	"fmt"
	"strings"

	"order_bot/internal/domain"
	"order_bot/internal/service"
)

// Plain-text rendering of order state. Only here do platform
// participants get the mention form; everywhere else they are plain
// ids.

const (
	stateLineOpen   = ":large_green_circle: 點餐中"
	stateLineClosed = ":red_circle: 已收單"
)

func mention(p domain.Participant) string {
	if p.Kind == domain.KindPlatform {
		return fmt.Sprintf("<@%s>", p.ID)
	}
	return p.ID
}

func stateLine(state domain.OrderState) string {
	if state == domain.OrderStateClosed {
		return stateLineClosed
	}
	return stateLineOpen
}

// RenderOrderMessage draws the full order message: header, creator,
// info, state, one line per item with its participant roster, and the
// derived totals.
func RenderOrderMessage(view *service.OrderView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", view.Order.Name)
	fmt.Fprintf(&b, "訂單建立者: <@%s>\n", view.Order.Creator)
	fmt.Fprintf(&b, "%s\n", view.Order.Info)
	fmt.Fprintf(&b, "%s\n", stateLine(view.Order.State))

	for _, it := range view.Items {
		shares := make([]string, 0, len(it.Shares))
		for _, sh := range it.Shares {
			shares = append(shares, fmt.Sprintf("%s x%d", mention(sh.Participant), sh.Quantity))
		}
		fmt.Fprintf(&b, "$%d %s x%d (%s)\n", it.Price, it.Name, it.Amount, strings.Join(shares, "、"))
	}

	fmt.Fprintf(&b, "*共 %d 項，訂單金額總計: %d*", view.TotalAmount, view.TotalPrice)
	return b.String()
}

// RenderSettlement draws the per-participant ledger posted to the
// thread when an order closes.
func RenderSettlement(entries []domain.SettlementEntry) string {
	var b strings.Builder
	b.WriteString("統計:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "$%d %s (%s)\n", e.TotalDue, mention(e.Participant), e.Breakdown)
	}
	return b.String()
}

// RenderRejection turns a user-facing failure into the notice posted
// back to the thread.
func RenderRejection(err error, actor string) string {
	var na *domain.NotAuthorizedError
	if errors.As(err, &na) {
		switch na.Action {
		case "edit order info", "close order":
			return fmt.Sprintf("<@%s> 只有訂單建立者(<@%s>)能修改資訊及結案", na.Actor, na.Creator)
		default:
			return fmt.Sprintf("已收單，<@%s>請聯繫訂單建立者(<@%s>)", na.Actor, na.Creator)
		}
	}
	if errors.Is(err, domain.ErrEmptyOrder) {
		return fmt.Sprintf("<@%s> 訂單內沒有品項，無法結案", actor)
	}
	return fmt.Sprintf("<@%s> %s", actor, err.Error())
}

// RenderHandover announces a creator transfer.
func RenderHandover(previous, next string) string {
	return fmt.Sprintf("訂單建立者<@%s>，已將權限轉給<@%s>", previous, next)
}
