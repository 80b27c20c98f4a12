package tenant

import "strings"

// Resolve 从请求Host解析诊所子域名标识
// 规则：
//   - host == rootDomain 或 "www." + rootDomain → 平台根（返回空字符串）
//   - host 以 "." + rootDomain 结尾且剩余部分为单级标签 → 该标签即诊所slug
//   - 其他任意形状（多级子域名、无关域名）→ 平台根
//
// 纯函数，大小写不敏感，对任意输入不会panic。
// 解析结果仅用于选择可达的路由和登录入口，本身不构成授权。
func Resolve(host, rootDomain string) string {
	hostLower := strings.ToLower(strings.TrimSpace(host))
	rootLower := strings.ToLower(strings.TrimSpace(rootDomain))

	if rootLower == "" || hostLower == "" {
		return ""
	}

	// 根域名或www前缀 → 平台根
	if hostLower == rootLower || hostLower == "www."+rootLower {
		return ""
	}

	// 必须是 "." + 根域名 的后缀
	suffix := "." + rootLower
	if !strings.HasSuffix(hostLower, suffix) {
		return ""
	}

	// 只接受单级子域名
	sub := hostLower[:len(hostLower)-len(suffix)]
	if sub == "" || strings.Contains(sub, ".") {
		return ""
	}

	return sub
}
