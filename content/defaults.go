package content

import "strings"

// Language is a supported content language code.
type Language string

const (
	Uzbek   Language = "uz"
	Russian Language = "ru"
	English Language = "en"
)

// DefaultLanguage is used when a request names no known language.
const DefaultLanguage = Uzbek

// Languages lists the supported languages in display order.
var Languages = []Language{Uzbek, Russian, English}

var languageLabels = map[Language]string{
	Uzbek:   "O'zbek",
	Russian: "Русский",
	English: "English",
}

// Label returns the language's own name.
func (l Language) Label() string {
	return languageLabels[l]
}

// ParseLanguage maps a code to a supported language, falling back to
// DefaultLanguage.
func ParseLanguage(code string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := languageLabels[l]; ok {
		return l
	}
	return DefaultLanguage
}

var defaultClients = []string{"Samsung", "Pepsi", "Click", "Payme", "Uzum", "Korzinka", "Murad Buildings", "Golden House"}

var defaultSocialLinks = SocialLinks{
	Instagram: "https://instagram.com",
	Telegram:  "https://telegram.org",
	Phone:     "+998901234567",
}

var defaults = map[Language]SiteContent{
	Uzbek: {
		HeroTitle:    "TOHIRJON\nBOLTAYEV",
		HeroSubtitle: "Brendlar va shaxslar uchun premium mobil kontent yaratuvchi videograf.",
		AboutText:    "Men shunchaki video olmayman, men hissiyotlarni va qadriyatlarni vizual tilga o'giraman. 3 yillik tajriba davomida 50 dan ortiq brendlar bilan ishladim. Mening maqsadim sizning mahsulotingiz yoki xizmatingizni mijozlar xotirasida qoladigan darajada taqdim etish.",
		AboutStats: []Stat{
			{Value: "3+", Label: "Yillik Tajriba"},
			{Value: "100+", Label: "Muvaffaqiyatli Loyiha"},
			{Value: "5M+", Label: "Umumiy Ko'rishlar"},
			{Value: "24/7", Label: "Kreativ Yondashuv"},
		},
		SocialLinks: defaultSocialLinks,
		Clients:     defaultClients,
		SectionTitles: SectionTitles{
			About:        "Haqida",
			Portfolio:    "Ishlar",
			Services:     "Xizmatlar",
			Process:      "Ish Jarayoni",
			Testimonials: "Mijozlar Fikri",
			FAQ:          "Ko'p So'raladigan Savollar",
			Contact:      "Bog'lanish",
			Equipment:    "Ishlatiladigan Texnika",
		},
		UITexts: UITexts{
			OrderBtn:        "Buyurtma Berish",
			ViewWorksBtn:    "Ishlarimni Ko'rish",
			ContactBtn:      "Bog'lanish",
			SendBtn:         "Yuborish",
			FooterText:      "© 2026 Tohirjon Boltayev. Barcha huquqlar himoyalangan.",
			ContactTitle:    "LOYIHANGIZNI\nMUHOKAMA\nQILAMIZMI?",
			ContactSubtitle: "Quyidagi havolalar orqali menga yozing yoki qo'ng'iroq qiling. 24 soat ichida javob beraman.",
			NoProjectsTitle: "Hozircha bu kategoriyada loyihalar yo'q.",
			NoProjectsDesc:  "Tez orada yangi ishlar qo'shiladi.",
		},
	},
	Russian: {
		HeroTitle:    "ТОХИРЖОН\nБОЛТАЕВ",
		HeroSubtitle: "Премиальный мобильный контент для брендов и личностей.",
		AboutText:    "Я не просто снимаю видео, я перевожу эмоции и ценности на визуальный язык. За 3 года работы я сотрудничал с более чем 50 брендами. Моя цель представить ваш продукт или услугу так, чтобы она осталась в памяти клиентов.",
		AboutStats: []Stat{
			{Value: "3+", Label: "Лет Опыта"},
			{Value: "100+", Label: "Успешных Проектов"},
			{Value: "5M+", Label: "Просмотров"},
			{Value: "24/7", Label: "Креативный Подход"},
		},
		SocialLinks: defaultSocialLinks,
		Clients:     defaultClients,
		SectionTitles: SectionTitles{
			About:        "Обо мне",
			Portfolio:    "Портфолио",
			Services:     "Услуги",
			Process:      "Процесс",
			Testimonials: "Отзывы",
			FAQ:          "FAQ",
			Contact:      "Контакты",
			Equipment:    "Оборудование",
		},
		UITexts: UITexts{
			OrderBtn:        "Заказать",
			ViewWorksBtn:    "Смотреть Работы",
			ContactBtn:      "Связаться",
			SendBtn:         "Отправить",
			FooterText:      "© 2026 Тохиржон Болтаев. Все права защищены.",
			ContactTitle:    "ОБСУДИМ\nВАШ ПРОЕКТ?",
			ContactSubtitle: "Напишите или позвоните мне по ссылкам ниже. Я отвечу в течение 24 часов.",
			NoProjectsTitle: "В этой категории пока нет проектов.",
			NoProjectsDesc:  "Скоро будут добавлены новые работы.",
		},
	},
	English: {
		HeroTitle:    "TOHIRJON\nBOLTAYEV",
		HeroSubtitle: "Premium mobile content creator for brands and individuals.",
		AboutText:    "I don't just shoot videos; I translate emotions and values into a visual language. With over 3 years of experience, I've worked with 50+ brands. My goal is to present your product or service in a memorable way.",
		AboutStats: []Stat{
			{Value: "3+", Label: "Years Experience"},
			{Value: "100+", Label: "Successful Projects"},
			{Value: "5M+", Label: "Total Views"},
			{Value: "24/7", Label: "Creative Approach"},
		},
		SocialLinks: defaultSocialLinks,
		Clients:     defaultClients,
		SectionTitles: SectionTitles{
			About:        "About",
			Portfolio:    "Portfolio",
			Services:     "Services",
			Process:      "Process",
			Testimonials: "Testimonials",
			FAQ:          "FAQ",
			Contact:      "Contact",
			Equipment:    "Equipment",
		},
		UITexts: UITexts{
			OrderBtn:        "Order Now",
			ViewWorksBtn:    "View Works",
			ContactBtn:      "Contact Me",
			SendBtn:         "Send",
			FooterText:      "© 2026 Tohirjon Boltayev. All rights reserved.",
			ContactTitle:    "LET'S DISCUSS\nYOUR PROJECT?",
			ContactSubtitle: "Write or call me via the links below. I'll reply within 24 hours.",
			NoProjectsTitle: "No projects in this category yet.",
			NoProjectsDesc:  "New works coming soon.",
		},
	},
}

// Defaults returns a copy of the compiled-in content for lang.
func Defaults(lang Language) SiteContent {
	d, ok := defaults[lang]
	if !ok {
		d = defaults[DefaultLanguage]
	}
	d.AboutStats = append([]Stat(nil), d.AboutStats...)
	d.Clients = append([]string(nil), d.Clients...)
	return d
}
