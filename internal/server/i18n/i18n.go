// Package i18n holds the localized short messages returned to API clients.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	SignupCodeSent   = "signup.code_sent"
	CodeResent       = "signup.code_resent"
	EmailVerified    = "signup.verified"
	SignedIn         = "session.signed_in"
	ResetLinkSent    = "reset.link_sent"
	PasswordChanged  = "reset.password_changed"
	InvalidInput     = "error.validation"
	EmailTaken       = "error.email_taken"
	NoPendingSignup  = "error.no_pending_signup"
	CodeMismatch     = "error.code_mismatch"
	CodeExpired      = "error.code_expired"
	UserNotFound     = "error.user_not_found"
	BadCredentials   = "error.bad_credentials"
	InvalidToken     = "error.invalid_token"
	TokenExpired     = "error.token_expired"
	Unauthorized     = "error.unauthorized"
	DeliveryFailed   = "error.delivery"
	InternalError    = "error.internal"
	TooManyRequests  = "error.rate_limited"
	ResourceNotFound = "error.not_found"
)

var supported = []language.Tag{language.English, language.Spanish}

var translations = map[language.Tag]map[string]string{
	language.English: {
		SignupCodeSent:   "Verification code sent to your email",
		CodeResent:       "A new verification code was sent",
		EmailVerified:    "Email verified, your account is ready",
		SignedIn:         "Signed in",
		ResetLinkSent:    "Password reset link sent to your email",
		PasswordChanged:  "Password updated",
		InvalidInput:     "Invalid request",
		EmailTaken:       "This email is already registered",
		NoPendingSignup:  "No pending signup for this email",
		CodeMismatch:     "Incorrect verification code",
		CodeExpired:      "Verification code expired, please sign up again",
		UserNotFound:     "User not found",
		BadCredentials:   "Incorrect email or password",
		InvalidToken:     "Invalid or expired link",
		TokenExpired:     "This link has expired",
		Unauthorized:     "Authentication required",
		DeliveryFailed:   "Could not send email, please try again",
		InternalError:    "Something went wrong",
		TooManyRequests:  "Too many requests, slow down",
		ResourceNotFound: "Not found",
	},
	language.Spanish: {
		SignupCodeSent:   "Código de verificación enviado a tu correo",
		CodeResent:       "Se envió un nuevo código de verificación",
		EmailVerified:    "Correo verificado, tu cuenta está lista",
		SignedIn:         "Sesión iniciada",
		ResetLinkSent:    "Enlace para restablecer la contraseña enviado a tu correo",
		PasswordChanged:  "Contraseña actualizada",
		InvalidInput:     "Solicitud no válida",
		EmailTaken:       "Este correo ya está registrado",
		NoPendingSignup:  "No hay un registro pendiente para este correo",
		CodeMismatch:     "Código de verificación incorrecto",
		CodeExpired:      "El código expiró, regístrate de nuevo",
		UserNotFound:     "Usuario no encontrado",
		BadCredentials:   "Correo o contraseña incorrectos",
		InvalidToken:     "Enlace no válido o expirado",
		TokenExpired:     "Este enlace ha expirado",
		Unauthorized:     "Se requiere autenticación",
		DeliveryFailed:   "No se pudo enviar el correo, inténtalo de nuevo",
		InternalError:    "Algo salió mal",
		TooManyRequests:  "Demasiadas solicitudes, espera un momento",
		ResourceNotFound: "No encontrado",
	},
}

// Translator resolves message keys for a negotiated language.
type Translator struct {
	cat     *catalog.Builder
	matcher language.Matcher
}

// New builds a Translator over the built-in English and Spanish catalogs.
func New() *Translator {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, text := range msgs {
			// Texts contain no format verbs, so SetString cannot fail here.
			_ = b.SetString(tag, key, text)
		}
	}
	return &Translator{cat: b, matcher: language.NewMatcher(supported)}
}

// Match picks the supported language for an Accept-Language header value.
// English is used when the header is empty or unparseable.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := t.matcher.Match(tags...)
	return supported[idx]
}

// Text returns the message for key in tag. Unknown keys come back verbatim.
func (t *Translator) Text(tag language.Tag, key string) string {
	return message.NewPrinter(tag, message.Catalog(t.cat)).Sprintf(key)
}
