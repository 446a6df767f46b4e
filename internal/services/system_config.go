package services

import (
	"strconv"

	"github.com/taskhive/taskhive/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var config models.SystemConfig
	if err := s.db.Where("key = ?", key).First(&config).Error; err != nil {
		return "", err
	}
	return config.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) Set(key, value string) error {
	var config models.SystemConfig
	err := s.db.Where("key = ?", key).First(&config).Error
	if err == gorm.ErrRecordNotFound {
		config = models.SystemConfig{Key: key, Value: value}
		return s.db.Create(&config).Error
	}
	if err != nil {
		return err
	}

	config.Value = value
	return s.db.Save(&config).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where("`group` = ?", group).Order("key ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

type UpdateEmailConfigRequest struct {
	Enabled  *bool   `json:"enabled"`
	Host     *string `json:"host"`
	Port     *int    `json:"port"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	From     *string `json:"from"`
	UseTLS   *bool   `json:"use_tls"`
}

// UpdateEmailConfig persists SMTP settings, touching only the provided fields.
func (s *SystemConfigService) UpdateEmailConfig(req *UpdateEmailConfigRequest) error {
	set := func(key, value string) error { return s.Set(key, value) }

	if req.Enabled != nil {
		if err := set("email_enabled", strconv.FormatBool(*req.Enabled)); err != nil {
			return err
		}
	}
	if req.Host != nil {
		if err := set("email_host", *req.Host); err != nil {
			return err
		}
	}
	if req.Port != nil {
		if err := set("email_port", strconv.Itoa(*req.Port)); err != nil {
			return err
		}
	}
	if req.Username != nil {
		if err := set("email_username", *req.Username); err != nil {
			return err
		}
	}
	if req.Password != nil {
		if err := set("email_password", *req.Password); err != nil {
			return err
		}
	}
	if req.From != nil {
		if err := set("email_from", *req.From); err != nil {
			return err
		}
	}
	if req.UseTLS != nil {
		if err := set("email_use_tls", strconv.FormatBool(*req.UseTLS)); err != nil {
			return err
		}
	}
	return nil
}
