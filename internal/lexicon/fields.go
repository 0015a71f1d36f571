package lexicon

// Tier is a field's declared importance.
type Tier int

const (
	TierOptional Tier = iota
	TierImportant
	TierCritical
)

// Priority maps an importance tier to a notification priority:
// critical contact fields are 3, important profile fields 2, the rest 1.
func (t Tier) Priority() int {
	switch t {
	case TierCritical:
		return 3
	case TierImportant:
		return 2
	default:
		return 1
	}
}

// Form field names as sent by the UI.
const (
	FieldFullName         = "full_name"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldCity             = "city"
	FieldLinkedIn         = "linkedin"
	FieldJobTitle         = "job_title"
	FieldMajor            = "major"
	FieldInstitution      = "institution"
	FieldDegree           = "degree"
	FieldGraduationYear   = "graduation_year"
	FieldResponsibilities = "responsibilities"
	FieldAchievements     = "achievements"
	FieldSkills           = "skills"
	FieldSummary          = "summary"
	FieldCareerGoals      = "career_goals"
)

// FieldInfo describes one form field.
type FieldInfo struct {
	Name  string
	Label string
	Hint  string
	Tier  Tier
}

// Required reports whether the field counts toward profile completion.
// Email/phone/name are critical; job title, major and institution important.
func (f FieldInfo) Required() bool {
	return f.Tier >= TierImportant
}

var fields = map[string]FieldInfo{
	FieldFullName: {
		Name: FieldFullName, Label: "Full name", Tier: TierCritical,
		Hint: "اكتب اسمك الكامل كما تريد أن يظهر لأصحاب العمل.",
	},
	FieldEmail: {
		Name: FieldEmail, Label: "Email", Tier: TierCritical,
		Hint: "استخدم بريدًا إلكترونيًا مهنيًا تتابعه باستمرار.",
	},
	FieldPhone: {
		Name: FieldPhone, Label: "Phone", Tier: TierCritical,
		Hint: "أضف رقم هاتف مع رمز الدولة ليسهل التواصل معك.",
	},
	FieldJobTitle: {
		Name: FieldJobTitle, Label: "Job title", Tier: TierImportant,
		Hint: "اكتب المسمى الوظيفي الذي تستهدفه، مثل: مهندس برمجيات أو محاسب.",
	},
	FieldMajor: {
		Name: FieldMajor, Label: "Major", Tier: TierImportant,
		Hint: "تخصصك الدراسي يساعدنا على اقتراح مهارات ووظائف مناسبة.",
	},
	FieldInstitution: {
		Name: FieldInstitution, Label: "Institution", Tier: TierImportant,
		Hint: "اذكر اسم الجامعة أو المعهد بالاسم الرسمي.",
	},
	FieldCity: {
		Name: FieldCity, Label: "City", Tier: TierOptional,
		Hint: "المدينة تساعد في مطابقة الفرص القريبة منك.",
	},
	FieldLinkedIn: {
		Name: FieldLinkedIn, Label: "LinkedIn", Tier: TierOptional,
		Hint: "رابط لينكدإن يعزز مصداقية ملفك.",
	},
	FieldDegree: {
		Name: FieldDegree, Label: "Degree", Tier: TierOptional,
		Hint: "حدد الدرجة العلمية: دبلوم، بكالوريوس، ماجستير...",
	},
	FieldGraduationYear: {
		Name: FieldGraduationYear, Label: "Graduation year", Tier: TierOptional,
		Hint: "سنة التخرج المتوقعة مقبولة إن كنت ما زلت تدرس.",
	},
	FieldResponsibilities: {
		Name: FieldResponsibilities, Label: "Responsibilities", Tier: TierOptional,
		Hint: "ابدأ كل مسؤولية بفعل واضح: أدرت، طورت، نفذت.",
	},
	FieldAchievements: {
		Name: FieldAchievements, Label: "Achievements", Tier: TierOptional,
		Hint: "الإنجازات المدعومة بالأرقام تلفت انتباه مسؤولي التوظيف.",
	},
	FieldSkills: {
		Name: FieldSkills, Label: "Skills", Tier: TierOptional,
		Hint: "اجمع بين المهارات التقنية والمهارات الشخصية.",
	},
	FieldSummary: {
		Name: FieldSummary, Label: "Summary", Tier: TierOptional,
		Hint: "نبذة من ثلاث جمل: من أنت، ماذا تتقن، وماذا تبحث.",
	},
	FieldCareerGoals: {
		Name: FieldCareerGoals, Label: "Career goals", Tier: TierOptional,
		Hint: "هدف واضح وقابل للقياس أفضل من عبارة عامة.",
	},
}

// Field looks up a field by name.
func Field(name string) (FieldInfo, bool) {
	f, ok := fields[name]
	return f, ok
}

// RequiredFields is the fixed completion set, in display order.
var RequiredFields = []string{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldJobTitle,
	FieldMajor,
	FieldInstitution,
}
