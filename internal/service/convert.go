package service

import (
	"github.com/mmynk/settleup/internal/models"
)

func toGroup(g *models.Group, members []models.GroupMember) Group {
	out := Group{
		ID:        g.ID,
		Name:      g.Name,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
	for _, m := range members {
		out.Members = append(out.Members, Member{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Role:        string(m.Role),
		})
	}
	return out
}

func toExpense(e *models.Expense) Expense {
	splits := make([]SplitShare, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = SplitShare{UserID: s.UserID, Amount: s.Amount}
	}
	return Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		SplitType:   string(e.SplitType),
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
	}
}

func toPayment(p *models.Payment) Payment {
	return Payment{
		ID:         p.ID,
		GroupID:    p.GroupID,
		FromUserID: p.FromUserID,
		ToUserID:   p.ToUserID,
		Amount:     p.Amount,
		CreatedAt:  p.CreatedAt,
		Note:       p.Note,
	}
}
