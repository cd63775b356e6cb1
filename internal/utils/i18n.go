package utils

// Server-side messages returned in API bodies. The wizard and dashboard
// carry their own UI strings.

var translations = map[string]map[string]string{
	"pt": {
		"health.ok":              "ok",
		"survey.saved":           "Pesquisa enviada com sucesso. Obrigado pela participação!",
		"survey.invalid":         "Dados da pesquisa inválidos.",
		"survey.empty":           "Nenhuma resposta foi enviada.",
		"survey.save_failed":     "Não foi possível salvar a pesquisa. Tente novamente.",
		"request.bad_json":       "Corpo da requisição inválido.",
		"request.not_found":      "Recurso não encontrado.",
		"stats.failed":           "Erro ao carregar as estatísticas.",
		"export.failed":          "Erro ao gerar o relatório.",
		"auth.required":          "Autenticação necessária.",
		"auth.invalid":           "Senha inválida.",
		"auth.disabled":          "Acesso administrativo não configurado.",
		"auth.ok":                "Autenticado com sucesso.",
		"auth.failed":            "Não foi possível concluir o login. Tente novamente.",
		"auth.password_required": "Informe a senha.",
		"health.db_unavailable":  "Banco de dados indisponível.",
	},
	"en": {
		"health.ok":              "ok",
		"survey.saved":           "Survey submitted successfully. Thank you for taking part!",
		"survey.invalid":         "Invalid survey data.",
		"survey.empty":           "No answers were submitted.",
		"survey.save_failed":     "The survey could not be saved. Please try again.",
		"request.bad_json":       "Invalid request body.",
		"request.not_found":      "Resource not found.",
		"stats.failed":           "Failed to load statistics.",
		"export.failed":          "Failed to generate the report.",
		"auth.required":          "Authentication required.",
		"auth.invalid":           "Invalid password.",
		"auth.disabled":          "Admin access is not configured.",
		"auth.ok":                "Signed in.",
		"auth.failed":            "Sign-in could not be completed. Please try again.",
		"auth.password_required": "Password is required.",
		"health.db_unavailable":  "Database unavailable.",
	},
}

// T returns the translated string for key in locale, falling back to
// Portuguese and then to the key itself.
func T(locale, key string) string {
	if m, ok := translations[locale]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if v, ok := translations[DefaultLocale][key]; ok {
		return v
	}
	return key
}
