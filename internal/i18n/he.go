package i18n

// he holds the Hebrew string table.
var he = map[string]string{
	// Response formatting
	"error":        "❌ {{msg}}",
	"errorDefault": "🙈 משהו השתבש",

	"addReminder":      "✅ מעולה! אזכיר לגבי \"{{message}}\" ב-{{datetime}}.",
	"addEvent":         "📅 נוסף \"{{title}}\" ליומן ב-{{datetime}}.",
	"addShopping":      "🛒 נוסף לרשימה:\n{{items}}",
	"completeShopping": "✅ סומנו {{count}} פריטים כבוצע!",

	"queryCalendarHeader": "📅 הנה מה שמתוכנן:",
	"queryCalendarEmpty":  "📅 אין אירועים קרובים — תהנו מהזמן הפנוי! 🎉",
	"queryShoppingHeader": "🛒 רשימת קניות:",
	"queryShoppingEmpty":  "🛒 רשימת הקניות ריקה — כל הכבוד! 🎉",
	"queryTasksHeader":    "📝 משימות פתוחות:",
	"queryTasksEmpty":     "📝 אין משימות פתוחות — אתם על זה! 🙌",

	"chitchatFallback": "🤔 לא הבנתי. נסו לבקש תזכורת, אירוע, או פריט לקניות!",
	"noMatchHint":      "🤔 לא הבנתי. שלחו 7 לתפריט הפקודות.",

	// Menu flows
	"flowReminderWhat":    "🔔 מה להזכיר?",
	"flowReminderWhen":    "⏰ מתי? (למשל: מחר ב-15:00, עוד שעה)",
	"flowReminderWhom":    "👤 למי? (1=לי, 2=לכולם)",
	"flowEventTitle":      "📅 שם האירוע?",
	"flowEventStart":      "📅 תאריך ושעת התחלה? (למשל: יום ראשון 10:00)",
	"flowEventEnd":        "🕐 שעת סיום? (למשל: 11:00)",
	"flowBadTime":         "❌ לא הצלחתי להבין את הזמן. נסו שוב (למשל: מחר ב-15:00)",
	"flowBadTimeEvent":    "❌ לא הצלחתי להבין את הזמן. נסו שוב (למשל: יום ראשון 10:00)",
	"flowNoActive":        "אין תהליך פעיל. שלחו 7 לתפריט.",
	"flowError":           "שגיאה בתהליך. שלחו 7 לתפריט.",

	// Mode toggles
	"aiModeOn":  "🤖 מצב חכם הופעל — דובי ישתמש ב-AI לפענוח הודעות.",
	"aiModeOff": "📋 מצב רגיל הופעל — שלחו 7 לתפריט הפקודות.",

	// Onboarding
	"onboardAlreadyMember": "{{name}}, כבר רשומים במשפחה! 👍",
	"onboardJoined":        "🎉 ברוכים הבאים! הוספתי את {{name}} למשפחה.",
	"onboardRegistered":    "🧦 שלום! אני דובי, העוזר המשפחתי שלכם! נרשמתם בהצלחה.\n\n👥 כדי להוסיף בני משפחה, בקשו מהם לשלוח: \"אני פה\" בקבוצה.\n\n❓ לתפריט מלא שלחו: 7 או \"עזרה\"",

	"helpText": `👋 שלום! אני דובי, העוזר המשפחתי שלכם 🧦

• *תזכורת* — "תזכיר לי להתקשר לאמא מחר ב-15:00"
• *אירוע* — "הוסף פגישה עם דן ביום ראשון 10:00-11:00"
• *קניות* — "תוסיף חלב וביצים" / "מה ברשימת הקניות?" / "קניתי חלב"
• *יומן* — "מה ביומן השבוע?"
• *משימות* — "הראה משימות"

אפשר גם לשלוח מספר מהתפריט:
1️⃣ רשימת קניות
2️⃣ משימות פתוחות
3️⃣ יומן השבוע
4️⃣ הוסף תזכורת
5️⃣ הוסף אירוע
6️⃣ הוסף לקניות
7️⃣ עזרה

פשוט תכתבו ואני אבין! 🤖`,

	// Daily briefing
	"briefingGreeting":     "☀️ בוקר טוב! הנה היום שלכם:\n",
	"briefingEventsHeader": "📅 *אירועים להיום:*",
	"briefingNoEvents":     "📅 אין אירועים להיום",
	"briefingTasksHeader":  "📝 *משימות פתוחות:*",
	"briefingNoTasks":      "📝 אין משימות פתוחות — יום חופשי!",
	"briefingAllDay":       "כל היום",

	// Reminder delivery
	"reminderNotification": "⏰ תזכורת עבור *{{forWhom}}*: {{message}}",
}
