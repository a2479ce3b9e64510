package handlers

import (
	"github.com/spec-kit/event-ticketing/internal/api/dto"
	"github.com/spec-kit/event-ticketing/internal/domain"
	"github.com/spec-kit/event-ticketing/internal/service"
)

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role}
}

func adminUserResponse(user *domain.User) dto.AdminUserResponse {
	return dto.AdminUserResponse{
		UserResponse: userResponse(user),
		Status:       user.Status,
		IsActive:     user.Status == domain.UserStatusActive,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func categoryResponse(category *domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
		IsActive:    category.IsActive,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

func categoryResponses(categories []domain.Category) []dto.CategoryResponse {
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return items
}

func eventResponses(events []domain.Event) []dto.EventResponse {
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, eventResponse(&events[i]))
	}
	return items
}

func eventResponse(event *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:                event.ID,
		Title:             event.Title,
		Description:       event.Description,
		Location:          event.Location,
		EventDate:         event.EventDate,
		Capacity:          event.Capacity,
		Price:             event.Price.StringFixed(2),
		IsActive:          event.IsActive,
		IsFeatured:        event.IsFeatured,
		OrganizerID:       event.OrganizerID,
		CategoryID:        event.CategoryID,
		TicketsSold:       event.TicketsSold,
		AvailableCapacity: event.Remaining(),
		TotalRevenue:      event.TotalRevenue.StringFixed(2),
		CreatedAt:         event.CreatedAt,
		UpdatedAt:         event.UpdatedAt,
	}
}

func ticketTypeResponse(tt *domain.TicketType) dto.TicketTypeResponse {
	return dto.TicketTypeResponse{
		ID:                tt.ID,
		EventID:           tt.EventID,
		Name:              tt.Name,
		Description:       tt.Description,
		Price:             tt.Price.StringFixed(2),
		QuantityAvailable: tt.QuantityAvailable,
		QuantitySold:      tt.QuantitySold,
		IsActive:          tt.IsActive,
		SortOrder:         tt.SortOrder,
	}
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:             ticket.ID,
		UniqueCode:     ticket.UniqueCode,
		UserID:         ticket.UserID,
		EventID:        ticket.EventID,
		Status:         ticket.Status,
		Price:          ticket.Price.StringFixed(2),
		DiscountAmount: ticket.DiscountAmount.StringFixed(2),
		PromoCodeID:    ticket.PromoCodeID,
		PurchaseDate:   ticket.PurchaseDate,
	}
}

func registrationResponse(reg *domain.Registration) dto.RegistrationResponse {
	return dto.RegistrationResponse{
		ID:             reg.ID,
		UserID:         reg.UserID,
		EventID:        reg.EventID,
		TicketTypeID:   reg.TicketTypeID,
		PromoCodeID:    reg.PromoCodeID,
		Quantity:       reg.Quantity,
		UnitPrice:      reg.UnitPrice.StringFixed(2),
		TotalPrice:     reg.TotalPrice.StringFixed(2),
		DiscountAmount: reg.DiscountAmount.StringFixed(2),
		FinalPrice:     reg.FinalPrice.StringFixed(2),
		PaymentStatus:  reg.PaymentStatus,
		RegisteredAt:   reg.RegisteredAt,
	}
}

func promoResponse(promo *domain.PromoCode) dto.PromoResponse {
	return dto.PromoResponse{
		ID:            promo.ID,
		Code:          promo.Code,
		Description:   promo.Description,
		DiscountType:  promo.DiscountType,
		DiscountValue: promo.DiscountValue.StringFixed(2),
		EventID:       promo.EventID,
		MaxUses:       promo.MaxUses,
		TimesUsed:     promo.TimesUsed,
		ValidFrom:     promo.ValidFrom,
		ValidUntil:    promo.ValidUntil,
		IsActive:      promo.IsActive,
		CreatedBy:     promo.CreatedBy,
		CreatedAt:     promo.CreatedAt,
	}
}

func adjustmentResponse(adj *domain.SalesAdjustment) dto.SalesAdjustmentResponse {
	return dto.SalesAdjustmentResponse{
		ID:         adj.ID,
		EventID:    adj.EventID,
		ActorID:    adj.ActorID,
		Kind:       adj.Kind,
		OldSold:    adj.OldSold,
		NewSold:    adj.NewSold,
		OldRevenue: adj.OldRevenue.StringFixed(2),
		NewRevenue: adj.NewRevenue.StringFixed(2),
		CreatedAt:  adj.CreatedAt,
	}
}

func salesReportResponse(report *service.SalesReport) dto.SalesReportResponse {
	rows := make([]dto.EventSalesResponse, 0, len(report.Events))
	for _, row := range report.Events {
		rows = append(rows, dto.EventSalesResponse{
			EventID:       row.Event.ID,
			Title:         row.Event.Title,
			EventDate:     row.Event.EventDate,
			Location:      row.Event.Location,
			Price:         row.Event.Price.StringFixed(2),
			Capacity:      row.Event.Capacity,
			IsActive:      row.Event.IsActive,
			TicketsSold:   row.TicketsSold,
			Remaining:     row.Remaining,
			TotalRevenue:  row.Revenue.StringFixed(2),
			OccupancyRate: row.OccupancyRate,
		})
	}
	return dto.SalesReportResponse{
		Events: rows,
		Summary: dto.SalesSummaryResponse{
			TotalRevenue:     report.Summary.TotalRevenue.StringFixed(2),
			TotalTicketsSold: report.Summary.TotalTicketsSold,
			ActiveEvents:     report.Summary.ActiveEvents,
			TotalEvents:      report.Summary.TotalEvents,
		},
	}
}

func historyResponse(entry *service.HistoryEntry) dto.HistoryEntryResponse {
	resp := dto.HistoryEntryResponse{Ticket: ticketResponse(&entry.Ticket)}
	if entry.Event != nil {
		event := eventResponse(entry.Event)
		resp.Event = &event
	}
	return resp
}

func dashboardResponse(dash *service.Dashboard) dto.DashboardResponse {
	byCategory := make([]dto.CategoryCountResponse, 0, len(dash.EventsByCategory))
	for _, bucket := range dash.EventsByCategory {
		byCategory = append(byCategory, dto.CategoryCountResponse{
			CategoryID: bucket.CategoryID,
			Name:       bucket.Name,
			Events:     bucket.Events,
		})
	}
	return dto.DashboardResponse{
		TotalUsers:       dash.TotalUsers,
		TotalEvents:      dash.TotalEvents,
		TotalTickets:     dash.TotalTickets,
		ActiveTickets:    dash.ActiveTickets,
		TotalRevenue:     dash.TotalRevenue.StringFixed(2),
		UpcomingEvents:   dash.UpcomingEvents,
		RecentEvents:     eventResponses(dash.RecentEvents),
		EventsByCategory: byCategory,
	}
}
