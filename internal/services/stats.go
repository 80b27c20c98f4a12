package services

import (
	"time"

	"gorm.io/gorm"
)

// StatsService 仪表盘统计服务
type StatsService struct {
	db           *gorm.DB
	patients     *PatientService
	appointments *AppointmentService
	followUps    *FollowUpService
	payments     *PaymentService
	inventory    *InventoryService
}

// DashboardStats 诊所仪表盘统计
type DashboardStats struct {
	Patients          int64   `json:"patients"`
	TodayAppointments int64   `json:"today_appointments"`
	PendingFollowUps  int64   `json:"pending_follow_ups"`
	LowStockItems     int64   `json:"low_stock_items"`
	MonthRevenue      float64 `json:"month_revenue"`
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db:           db,
		patients:     NewPatientService(db),
		appointments: NewAppointmentService(db),
		followUps:    NewFollowUpService(db),
		payments:     NewPaymentService(db),
		inventory:    NewInventoryService(db),
	}
}

// Dashboard 汇总诊所仪表盘统计
func (s *StatsService) Dashboard(clinicID uint) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.Patients, err = s.patients.CountByClinic(clinicID); err != nil {
		return nil, err
	}
	if stats.TodayAppointments, err = s.appointments.CountToday(clinicID); err != nil {
		return nil, err
	}
	if stats.PendingFollowUps, err = s.followUps.CountPending(clinicID); err != nil {
		return nil, err
	}
	if stats.LowStockItems, err = s.inventory.CountLowStock(clinicID); err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if stats.MonthRevenue, err = s.payments.SumSince(clinicID, monthStart); err != nil {
		return nil, err
	}

	return stats, nil
}
