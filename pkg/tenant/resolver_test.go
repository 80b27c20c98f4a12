package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		rootDomain string
		want       string
	}{
		// 根域名
		{"根域名精确匹配", "clinicapp.com", "clinicapp.com", ""},
		{"www前缀", "www.clinicapp.com", "clinicapp.com", ""},
		{"带端口的根域名", "lvh.me:8080", "lvh.me:8080", ""},
		// 单级子域名
		{"单级子域名", "prashanti.clinicapp.com", "clinicapp.com", "prashanti"},
		{"带端口的子域名", "prashanti.lvh.me:8080", "lvh.me:8080", "prashanti"},
		{"大写归一化", "Prashanti.ClinicApp.COM", "clinicapp.com", "prashanti"},
		// 非法形状
		{"多级子域名", "a.b.clinicapp.com", "clinicapp.com", ""},
		{"无关域名", "evil.com", "clinicapp.com", ""},
		{"后缀相似但无点分隔", "evilclinicapp.com", "clinicapp.com", ""},
		{"空Host", "", "clinicapp.com", ""},
		{"空根域名", "prashanti.clinicapp.com", "", ""},
		{"仅有点", ".clinicapp.com", "clinicapp.com", ""},
		{"前后空白", "  prashanti.clinicapp.com  ", "clinicapp.com", "prashanti"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.host, tt.rootDomain))
		})
	}
}
