// Package syllabus holds the static curriculum of every supported exam type.
package syllabus

import (
	"errors"
	"fmt"

	"github.com/pavelanni/examprep/internal/model"
)

// MathSubject is the only subject whose questions carry a step-by-step solution.
const MathSubject = "Matematik"

// ErrUnknownExamType is returned for exam types outside the catalog.
var ErrUnknownExamType = errors.New("unknown exam type")

var gkgy = []model.SyllabusItem{
	{
		Subject:       "Türkçe",
		QuestionCount: 30,
		Topics: []string{"Sözcükte Anlam", "Cümlede Anlam", "Paragraf", "Ses Bilgisi", "Sözcükte Yapı",
			"Sözcük Türleri", "Cümlenin Türleri", "Yazım Kuralları", "Noktalama İşaretleri",
			"Anlatım Bozuklukları", "Sözel Mantık"},
	},
	{
		Subject:       MathSubject,
		QuestionCount: 30,
		Topics: []string{"Temel Kavramlar", "Sayılar", "Ebob-Ekok", "Denklemler", "Rasyonel Sayılar",
			"Eşitsizlik & Mutlak Değer", "Üslü ve Köklü Sayılar", "Çarpanlara Ayırma", "Oran-Orantı",
			"Problemler", "Kümeler", "Permütasyon Kombinasyon Olasılık", "Tablo & Grafikler", "Sayısal Mantık"},
	},
	{
		Subject:       "Tarih",
		QuestionCount: 27,
		Topics: []string{"İslamiyet Öncesi Türk Tarihi", "İlk Müslüman Türk Devletleri", "Osmanlı Tarihi",
			"Yenileşme ve Demokratikleşme Hareketleri", "XX. Yüzyıl Osmanlı", "Kurtuluş Savaşı",
			"Cumhuriyet Dönemi", "Atatürk Dönemi Dış Politika", "Çağdaş Türk & Dünya Tarihi"},
	},
	{
		Subject:       "Coğrafya",
		QuestionCount: 18,
		Topics: []string{"Türkiye Coğrafi Konumu", "Türkiye İklimi & Bitki Örtüsü", "Fiziki Özellikler",
			"Nüfus & Yerleşme", "Ekonomik Coğrafya", "Bölgeler Coğrafyası"},
	},
	{
		Subject:       "Vatandaşlık",
		QuestionCount: 9,
		Topics: []string{"Temel Hukuk", "Anayasa ve Devlet Yapısı", "1982 Anayasası İlkeleri",
			"Temel Hak & Hürriyetler", "Yasama Yürütme Yargı", "İdare Hukuku"},
	},
	{
		Subject:       "Güncel Bilgi",
		QuestionCount: 6,
		Topics: []string{"Uluslararası Kuruluşlar", "Güncel Kültürel Olaylar", "Bilim ve Teknoloji",
			"Sanat ve Edebiyat", "Spor Organizasyonları", "UNESCO Miras Listesi"},
	},
}

var aGroup = []model.SyllabusItem{
	{Subject: "İktisat", QuestionCount: 40, Topics: []string{"Mikro İktisat", "Makro İktisat", "Para-Banka-Kredi",
		"Uluslararası İktisat", "Kalkınma & Büyüme", "Türkiye Ekonomisi"}},
	{Subject: "Hukuk", QuestionCount: 40, Topics: []string{"Anayasa Hukuku", "İdare Hukuku", "Ceza Hukuku",
		"Borçlar Hukuku", "Medeni Hukuk", "Ticaret Hukuku", "İcra-İflas Hukuku"}},
	{Subject: "Maliye", QuestionCount: 40, Topics: []string{"Maliye Teorisi", "Kamu Harcamaları", "Kamu Gelirleri",
		"Devlet Borçlanması", "Bütçe", "Vergi Hukuku"}},
	{Subject: "Kamu Yönetimi", QuestionCount: 40, Topics: []string{"Siyaset Bilimi", "Anayasa", "Yönetim Bilimleri",
		"Yönetim Hukuku", "Kentleşme & Çevre", "Türk Siyasi Hayatı"}},
	{Subject: "Uluslararası İlişkiler", QuestionCount: 40, Topics: []string{"Uluslararası İlişkiler Teorisi",
		"Uluslararası Hukuk", "Siyasi Tarih", "Türk Dış Politikası"}},
}

// Exam describes an exam type as advertised to the user.
type Exam struct {
	Type        model.ExamType
	Title       string
	Description string
	Total       int
}

var exams = []Exam{
	{Type: model.ExamGKGY, Title: "GK-GY", Description: "Türkçe, Matematik, Tarih, Coğrafya, Vatandaşlık, Güncel", Total: 120},
	{Type: model.ExamAGroup, Title: "A Grubu", Description: "İktisat, Hukuk, Maliye, Kamu Yönetimi, Uluslararası İlişkiler", Total: 200},
}

// Exams returns every exam type in display order.
func Exams() []Exam {
	out := make([]Exam, len(exams))
	copy(out, exams)
	return out
}

// Lookup returns the advertised description of an exam type.
func Lookup(t model.ExamType) (Exam, error) {
	for _, e := range exams {
		if e.Type == t {
			return e, nil
		}
	}
	return Exam{}, fmt.Errorf("%w: %q", ErrUnknownExamType, t)
}

// For returns a copy of the syllabus of the given exam type.
func For(t model.ExamType) ([]model.SyllabusItem, error) {
	var src []model.SyllabusItem
	switch t {
	case model.ExamGKGY:
		src = gkgy
	case model.ExamAGroup:
		src = aGroup
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExamType, t)
	}
	out := make([]model.SyllabusItem, len(src))
	for i, it := range src {
		out[i] = it
		out[i].Topics = append([]string(nil), it.Topics...)
	}
	return out, nil
}

// Total sums the question counts of a syllabus.
func Total(items []model.SyllabusItem) int {
	total := 0
	for _, it := range items {
		total += it.QuestionCount
	}
	return total
}

// IsMath reports whether subject gets step-by-step solutions.
func IsMath(subject string) bool {
	return subject == MathSubject
}

// ParseExamType validates a user-supplied exam type.
func ParseExamType(s string) (model.ExamType, error) {
	t := model.ExamType(s)
	if _, err := Lookup(t); err != nil {
		return "", err
	}
	return t, nil
}
