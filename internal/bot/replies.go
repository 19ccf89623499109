package bot

import (
	"fmt"
	"strings"

	"masabot/internal/models"
)

// User-facing Turkish texts. The engine speaks reason codes; the bot
// translates them here.
const (
	replyGreeting = "Merhaba! Masa rezervasyonu için tarih, saat ve kişi sayısını yazın.\n" +
		"Örnek: \"yarın akşam 8, 4 kişi\" veya \"25.10.2025 19:30 2 kişi\"\n\n" +
		"Komutlar:\n/menu - günün menüsü\n/rezervasyonlarim - rezervasyonlarınız\n/iptal - rezervasyon iptali\n/reset - baştan başla"
	replyAskMissing   = "Eksik bilgi var. Lütfen tarih, saat ve kişi sayısını belirtin (örn. \"yarın 19:30 4 kişi\")."
	replyRateLimited  = "Çok hızlı mesaj gönderiyorsunuz, lütfen biraz bekleyin."
	replyStateLost    = "Bir sorun oluştu, lütfen baştan başlayın."
	replyReset        = "Tamam, baştan başlayalım. Tarih, saat ve kişi sayısını yazın."
	replyChooseTable  = "Müsait masalar aşağıda. Lütfen bir masa seçin:"
	replyNoSelection  = "Lütfen listeden bir masa seçin ya da /reset yazın."
	replyBookingError = "Rezervasyon kaydedilemedi, lütfen tekrar deneyin."
	replyNoBookings   = "Kayıtlı rezervasyonunuz bulunmuyor."
	replyCancelUsage  = "İptal için: /iptal TARİH SAAT MASA\nÖrnek: /iptal 2025-10-25 19:30 3"
)

// reasonReply maps failure reasons to Turkish explanations.
func reasonReply(reason models.Reason, message string) string {
	switch reason {
	case models.ReasonOK:
		return "Maalesef bu saatte uygun masa kalmadı. Başka bir saat deneyin."
	case models.ReasonOutOfRange:
		return "Bu tarih rezervasyon dönemimizin dışında. " + message
	case models.ReasonClosedDay:
		return "O gün maalesef kapalıyız."
	case models.ReasonOutsideHours:
		return "Bu saatte hizmet vermiyoruz. Çalışma saatlerimiz içinde bir saat seçin."
	case models.ReasonAlreadyBooked:
		return "Bu masa o saat için dolu. Başka bir masa veya saat deneyin."
	case models.ReasonNotFound:
		return "Böyle bir rezervasyon bulunamadı."
	case models.ReasonNotOwner:
		return "Bu rezervasyon size ait görünmüyor."
	case models.ReasonInvalidInput:
		return "Bilgilerde bir hata var: " + message
	case models.ReasonPersistenceFailure:
		return replyBookingError
	default:
		return "İşlem tamamlanamadı, lütfen tekrar deneyin."
	}
}

func formatConfirmation(r *models.Reservation) string {
	return fmt.Sprintf(
		"Rezervasyonunuz alındı! ✅\n\nTarih: %s\nSaat: %s\nMasa: %d\nKişi: %d\n\nGörüşmek üzere!",
		r.Date, r.Time, r.TableID, r.PartySize)
}

func formatReservationList(list []models.Reservation) string {
	var b strings.Builder
	b.WriteString("Rezervasyonlarınız:\n\n")
	for _, r := range list {
		fmt.Fprintf(&b, "• %s %s, Masa %d, %d kişi\n", r.Date, r.Time, r.TableID, r.PartySize)
	}
	b.WriteString("\nİptal için: /iptal TARİH SAAT MASA")
	return b.String()
}

func formatSummary(date, clock string, tableID, party int) string {
	return fmt.Sprintf("Onaylıyor musunuz?\n\nTarih: %s\nSaat: %s\nMasa: %d\nKişi: %d", date, clock, tableID, party)
}

// Turkish display titles per offering category, in display order.
var turkishTitles = map[string]string{
	models.CategorySoup:  "Çorbalar",
	models.CategoryMain:  "Ana Yemekler",
	models.CategorySalad: "Salatalar",
	models.CategoryDrink: "İçecekler",
}

var turkishWeekdays = [...]string{
	"Pazar", "Pazartesi", "Salı", "Çarşamba", "Perşembe", "Cuma", "Cumartesi",
}

func formatOfferingText(o models.Offering) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) Menüsü:\n\n", turkishWeekdays[int(o.Weekday)], o.Date)
	for _, cat := range models.Categories {
		b.WriteString(turkishTitles[cat] + ":\n")
		for _, item := range o.Categories[cat] {
			b.WriteString("• " + item + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
