package sessauth

// Fallback messages shown to the user when the gateway reports a failure
// without a usable message of its own. Raw errors and stack text never reach
// the user.

type messageID int

const (
	msgLoginFailed messageID = iota
	msgSessionExpired
	msgNotAuthenticated
	msgProfileUpdateFailed
)

var fallbackMessages = map[string]map[messageID]string{
	"en": {
		msgLoginFailed:         "Sign-in failed. Check your credentials and try again.",
		msgSessionExpired:      "Your session has expired. Please sign in again.",
		msgNotAuthenticated:    "You are not signed in.",
		msgProfileUpdateFailed: "Profile update failed. Please try again.",
	},
	"ru": {
		msgLoginFailed:         "Не удалось войти. Проверьте учетные данные и повторите попытку.",
		msgSessionExpired:      "Сессия истекла. Войдите заново.",
		msgNotAuthenticated:    "Вы не вошли в систему.",
		msgProfileUpdateFailed: "Не удалось обновить профиль. Повторите попытку.",
	},
	"uz": {
		msgLoginFailed:         "Kirish amalga oshmadi. Ma'lumotlarni tekshirib, qayta urinib ko'ring.",
		msgSessionExpired:      "Sessiya muddati tugadi. Qaytadan kiring.",
		msgNotAuthenticated:    "Siz tizimga kirmagansiz.",
		msgProfileUpdateFailed: "Profilni yangilab bo'lmadi. Qayta urinib ko'ring.",
	},
}

func (s *Store) message(locale string, id messageID) string {
	if locale == "" {
		locale = s.config.Locale
	}
	table, ok := fallbackMessages[locale]
	if !ok {
		table = fallbackMessages["en"]
	}
	return table[id]
}
