package services

import (
	"fmt"
	"time"

	"clinicore/pkg/logger"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// FollowUpScheduler 随访逾期标记调度器
// 每天凌晨把到期仍为PENDING的随访批量置为OVERDUE
type FollowUpScheduler struct {
	db      *gorm.DB
	service *FollowUpService
	cron    *cron.Cron
	running bool
}

// NewFollowUpScheduler 创建随访调度器
func NewFollowUpScheduler(db *gorm.DB) *FollowUpScheduler {
	return &FollowUpScheduler{
		db:      db,
		service: NewFollowUpService(db),
		cron:    cron.New(),
	}
}

// Start 启动调度器
func (s *FollowUpScheduler) Start() error {
	if s.running {
		return fmt.Errorf("调度器已经在运行")
	}

	// 每天01:00执行一次
	_, err := s.cron.AddFunc("0 1 * * *", s.runOnce)
	if err != nil {
		return fmt.Errorf("注册随访逾期任务失败: %v", err)
	}

	s.cron.Start()
	s.running = true

	logger.GetLogger().Info("随访逾期标记调度器启动成功")
	return nil
}

// Stop 停止调度器
func (s *FollowUpScheduler) Stop() {
	if !s.running {
		return
	}

	logger.GetLogger().Info("停止随访逾期标记调度器")
	s.cron.Stop()
	s.running = false
}

func (s *FollowUpScheduler) runOnce() {
	log := logger.GetLogger()

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	count, err := s.service.MarkOverdue(dayStart)
	if err != nil {
		log.Errorf("标记逾期随访失败: %v", err)
		return
	}

	if count > 0 {
		log.Infof("已标记 %d 条逾期随访", count)
	}
}
