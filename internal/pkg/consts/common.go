package consts

const (
	DefaultAvatarURL = "default_avatar.png"
)

// 角色名称，与 JWT 中的 roles 对应
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

const (
	// DateLayout 配额缓存 key 中的日期格式
	DateLayout = "20060102"
)
