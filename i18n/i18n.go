package i18n

import (
	"log"
	"net/http"

	"gatepass/faults"
	"gatepass/utils"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Every fault the engine can surface has an English and a Simplified
// Chinese user-facing message. The catalogs are compiled in; there is no
// runtime file loading.
var bundle *i18n.Bundle

func init() {
	bundle = i18n.NewBundle(language.English)

	mustAdd(language.English,
		&i18n.Message{ID: "capacity_exceeded", Other: "This event is full. Please try another session."},
		&i18n.Message{ID: "duplicate_queue_number", Other: "Registration failed due to a queue number clash. Please try again."},
		&i18n.Message{ID: "cancelled_conflict", Other: "This registration has been cancelled. Restore it before marking attendance."},
		&i18n.Message{ID: "token_mismatch", Other: "This QR code could not be verified. Please rescan or look up the registration manually."},
		&i18n.Message{ID: "invalid_format", Other: "Unrecognized QR code."},
		&i18n.Message{ID: "not_found", Other: "No matching registration was found."},
		&i18n.Message{ID: "store_unavailable", Other: "The service is temporarily unavailable. Please try again shortly."},
		&i18n.Message{ID: "internal", Other: "Something went wrong. Please try again."},
	)

	mustAdd(language.SimplifiedChinese,
		&i18n.Message{ID: "capacity_exceeded", Other: "本场活动名额已满，请选择其他场次。"},
		&i18n.Message{ID: "duplicate_queue_number", Other: "排队号码冲突，报名失败，请重试。"},
		&i18n.Message{ID: "cancelled_conflict", Other: "该报名已取消，请先恢复报名再签到。"},
		&i18n.Message{ID: "token_mismatch", Other: "二维码验证失败，请重新扫描或手动查询。"},
		&i18n.Message{ID: "invalid_format", Other: "无法识别的二维码。"},
		&i18n.Message{ID: "not_found", Other: "找不到对应的报名记录。"},
		&i18n.Message{ID: "store_unavailable", Other: "服务暂时不可用，请稍后重试。"},
		&i18n.Message{ID: "internal", Other: "出了点问题，请重试。"},
	)
}

func mustAdd(tag language.Tag, messages ...*i18n.Message) {
	if err := bundle.AddMessages(tag, messages...); err != nil {
		log.Fatalf("i18n: failed to register %v messages: %v", tag, err)
	}
}

// Localize renders the message for id in the requested language,
// falling back to English and finally to the id itself.
func Localize(lang, id string) string {
	langs := []string{}
	if lang != "" {
		langs = append(langs, lang)
	}
	langs = append(langs, language.English.String())

	localizer := i18n.NewLocalizer(bundle, langs...)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		log.Printf("i18n: localize failed (id=%s, lang=%s): %v", id, lang, err)
		return id
	}
	return msg
}

// FaultMessage maps an engine error to its localized user-facing text.
func FaultMessage(lang string, err error) string {
	return Localize(lang, faults.ID(err))
}

// RespondFault writes the standard error envelope for a failed
// operation: the stable fault id plus the message in the caller's
// language (Accept-Language, best effort).
func RespondFault(w http.ResponseWriter, r *http.Request, err error) {
	lang := r.Header.Get("Accept-Language")
	utils.RespondWithJSON(w, faults.HTTPStatus(err), utils.M{
		"error":   faults.ID(err),
		"message": FaultMessage(lang, err),
	})
}
