package mail

import (
	"bytes"
	"fmt"
	htmlTemplate "html/template"
	textTemplate "text/template"
)

// The unified template renders every transactional email: a heading,
// a description, an optional highlighted block (verification code,
// temporary password, link) and an optional security note. Layout and
// wording follow the production Arabic emails.
type UnifiedEmailData struct {
	Heading          string
	Greeting         string
	Description      string
	MainContent      string
	MainContentLabel string
	AdditionalInfo   string
	SecurityNote     string
	Footer           string
}

const unifiedHTML = `<div dir="rtl" style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f9f9f9;">
  <div style="background-color: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1);">
    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #2563eb; margin: 0;">رزقي</h1>
      <p style="color: #666; margin: 5px 0;">منصة الزواج الإسلامية</p>
    </div>

    <h2 style="color: #333; text-align: center; margin-bottom: 20px;">{{.Heading}}</h2>

    {{if .Greeting}}<p style="color: #555; line-height: 1.6; margin-bottom: 20px;">{{.Greeting}}</p>{{end}}

    <p style="color: #555; line-height: 1.6; margin-bottom: 20px;">{{.Description}}</p>

    {{if .MainContent}}<div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; text-align: center; margin: 20px 0;">
      <h1 style="color: #2563eb; font-size: 32px; letter-spacing: 5px; margin: 0; font-family: monospace;">{{.MainContent}}</h1>
      {{if .MainContentLabel}}<p style="color: #6b7280; font-size: 14px; margin: 10px 0 0 0;">{{.MainContentLabel}}</p>{{end}}
    </div>{{end}}

    {{if .AdditionalInfo}}<p style="color: #555; line-height: 1.6; margin-bottom: 20px;">{{.AdditionalInfo}}</p>{{end}}

    {{if .SecurityNote}}<div style="background-color: #fef3cd; border: 1px solid #fbbf24; padding: 15px; border-radius: 8px; margin: 20px 0;">
      <p style="color: #92400e; margin: 0; font-size: 14px;"><strong>تنبيه أمني:</strong> {{.SecurityNote}}</p>
    </div>{{end}}

    <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #e5e7eb;">
      <p style="color: #9ca3af; font-size: 12px; margin: 0;">{{if .Footer}}{{.Footer}}{{else}}© 2025 رزقي - منصة الزواج الإسلامية{{end}}</p>
    </div>
  </div>
</div>`

const unifiedText = `{{.Heading}}

{{if .Greeting}}{{.Greeting}}

{{end}}{{.Description}}
{{if .MainContent}}
{{if .MainContentLabel}}{{.MainContentLabel}}: {{.MainContent}}{{else}}{{.MainContent}}{{end}}
{{end}}{{if .AdditionalInfo}}
{{.AdditionalInfo}}
{{end}}{{if .SecurityNote}}
تنبيه أمني: {{.SecurityNote}}
{{end}}`

var (
	unifiedHTMLTemplate = htmlTemplate.Must(htmlTemplate.New("unified.html").Parse(unifiedHTML))
	unifiedTextTemplate = textTemplate.Must(textTemplate.New("unified.txt").Parse(unifiedText))
)

// RenderUnified produces the HTML body and plain-text alternative for
// the unified layout.
func RenderUnified(data UnifiedEmailData) (html string, text string, err error) {
	var htmlBuf bytes.Buffer
	if err := unifiedHTMLTemplate.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute HTML template: %w", err)
	}

	var textBuf bytes.Buffer
	if err := unifiedTextTemplate.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute text template: %w", err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}

// VerificationEmailData selects the per-purpose wording around a
// 6-digit code.
type VerificationEmailData struct {
	To         string
	Code       string
	Purpose    string
	AdminRealm bool
	TTLMinutes int
}

func VerificationEmail(data VerificationEmailData) (Message, error) {
	var subject, heading, description, additional string

	switch {
	case data.AdminRealm:
		subject = "كود التحقق الثنائي - رزقي"
		heading = "كود التحقق الثنائي للوحة الإدارة"
		description = "تم طلب تسجيل دخول للوحة إدارة رزقي. استخدم الكود التالي لإكمال عملية تسجيل الدخول:"
	case data.Purpose == "device_trust":
		subject = "كود التحقق من الجهاز - رزقي"
		heading = "كود التحقق من الجهاز"
		description = "تم اكتشاف تسجيل دخول من جهاز جديد. استخدم الكود التالي للتحقق من هوية الجهاز:"
		additional = "بعد التحقق، سيتم حفظ هذا الجهاز كجهاز موثوق لمدة 24 ساعة."
	case data.Purpose == "password_reset":
		subject = "كود إعادة تعيين كلمة المرور - رزقي"
		heading = "كود إعادة تعيين كلمة المرور"
		description = "تم طلب إعادة تعيين كلمة المرور لحسابك. استخدم الكود التالي:"
	default:
		subject = "كود تسجيل الدخول - رزقي"
		heading = "كود تسجيل الدخول"
		description = "تم طلب تسجيل دخول لحسابك في منصة رزقي. استخدم الكود التالي لإكمال عملية تسجيل الدخول:"
	}

	ttl := data.TTLMinutes
	if ttl <= 0 {
		ttl = 10
	}

	html, text, err := RenderUnified(UnifiedEmailData{
		Heading:          heading,
		Greeting:         "السلام عليكم ورحمة الله وبركاته،",
		Description:      description,
		MainContent:      data.Code,
		MainContentLabel: "كود التحقق الخاص بك",
		AdditionalInfo:   joinNonEmpty(fmt.Sprintf("هذا الكود صالح لمدة %d دقائق فقط. إذا لم تطلب هذا الكود، يرجى تجاهل هذه الرسالة.", ttl), additional),
		SecurityNote:     "لا تشارك هذا الكود مع أي شخص آخر. فريق رزقي لن يطلب منك هذا الكود أبداً.",
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      data.To,
		Subject: subject,
		HTML:    html,
		Text:    text,
	}, nil
}

// LoginAlertData feeds the post-login notification email. Security
// level only changes emphasis, never content availability.
type LoginAlertData struct {
	To            string
	Name          string
	Timestamp     string
	IPAddress     string
	Location      string
	Browser       string
	DeviceType    string
	LoginMethod   string
	SecurityLevel string
}

func LoginAlertEmail(data LoginAlertData) (Message, error) {
	method := "تسجيل دخول ناجح"
	switch data.LoginMethod {
	case "trusted_device":
		method = "تسجيل دخول من جهاز موثوق"
	case "two_factor":
		method = "تسجيل دخول بعد التحقق الثنائي"
	}

	securityNote := ""
	if data.SecurityLevel == "low" {
		securityNote = "إذا لم تكن أنت من قام بتسجيل الدخول، يرجى تغيير كلمة المرور فوراً والتواصل مع فريق الدعم."
	}

	details := fmt.Sprintf("الوقت: %s | عنوان IP: %s | الموقع: %s | المتصفح: %s | نوع الجهاز: %s",
		data.Timestamp, data.IPAddress, data.Location, data.Browser, data.DeviceType)

	html, text, err := RenderUnified(UnifiedEmailData{
		Heading:        method,
		Greeting:       fmt.Sprintf("مرحباً %s،", data.Name),
		Description:    "تم تسجيل دخول جديد إلى حسابك في منصة رزقي. تفاصيل الجلسة:",
		AdditionalInfo: details,
		SecurityNote:   securityNote,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      data.To,
		Subject: "إشعار تسجيل دخول - رزقي",
		HTML:    html,
		Text:    text,
	}, nil
}

// NotificationEmail renders a generic platform notification (profile
// view, like, message, match, system announcement).
func NotificationEmail(to, name, title, body string) (Message, error) {
	html, text, err := RenderUnified(UnifiedEmailData{
		Heading:     title,
		Greeting:    fmt.Sprintf("مرحباً %s،", name),
		Description: body,
	})
	if err != nil {
		return Message{}, err
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("%s - رزقي", title),
		HTML:    html,
		Text:    text,
	}, nil
}

func joinNonEmpty(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
