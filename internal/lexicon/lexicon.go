// Package lexicon holds the static vocabulary shared by the classifier, the
// context store and the engagement engine: professional-field keyword groups,
// per-field coaching hints and importance tiers, step labels, conversation
// topic buckets and fallback reply templates.
//
// Everything here is plain data. Triggers are matched as lower-case
// substrings, so they are stored lower-cased.
package lexicon

// Unspecified is the field label used when nothing in the form identifies a domain.
const Unspecified = "unspecified"

// Professional domain labels.
const (
	DomainSoftware    = "Computer & Software Engineering"
	DomainElectrical  = "Electrical Engineering"
	DomainCivil       = "Civil Engineering"
	DomainMechanical  = "Mechanical Engineering"
	DomainEngineering = "Engineering"
	DomainMedicine    = "Medicine & Health"
	DomainBusiness    = "Business Administration"
	DomainMarketing   = "Marketing & Sales"
	DomainAccounting  = "Accounting & Finance"
	DomainEducation   = "Education"
	DomainDesign      = "Design"
)

// DomainGroup maps a set of trigger substrings to a field label.
type DomainGroup struct {
	Label    string
	Triggers []string
}

// DomainGroups are tested in order and the first match wins. Triggers are
// plain substrings, so short ones must not occur inside unrelated words
// ("طب" in "تطبيق", "ux" in "luxury"). Engineering
// sub-specialties must stay ahead of the generic engineering group, and all
// engineering groups ahead of medicine.
var DomainGroups = []DomainGroup{
	{
		Label: DomainSoftware,
		Triggers: []string{
			"هندسة حاسوب", "هندسة الحاسوب", "هندسة برمجيات", "هندسة البرمجيات",
			"علم الحاسوب", "علوم الحاسوب", "برمجة", "مطور",
			"computer engineering", "software", "computer science", "programming", "developer",
		},
	},
	{
		Label: DomainElectrical,
		Triggers: []string{
			"هندسة كهربائية", "الهندسة الكهربائية", "هندسة الكهرباء", "اتصالات",
			"electrical engineering", "electronics", "telecommunication",
		},
	},
	{
		Label: DomainCivil,
		Triggers: []string{
			"هندسة مدنية", "الهندسة المدنية", "إنشاءات",
			"civil engineering", "construction", "structural",
		},
	},
	{
		Label: DomainMechanical,
		Triggers: []string{
			"هندسة ميكانيكية", "الهندسة الميكانيكية", "ميكانيك",
			"mechanical engineering", "mechanical",
		},
	},
	{
		Label:    DomainEngineering,
		Triggers: []string{"هندسة", "مهندس", "engineering", "engineer"},
	},
	{
		Label: DomainMedicine,
		Triggers: []string{
			"الطب", "طبيب", "طبية", "تمريض", "صيدلة", "مستشفى",
			"medicine", "medical", "doctor", "nurse", "pharmacy", "clinic",
		},
	},
	{
		Label: DomainBusiness,
		Triggers: []string{
			"إدارة أعمال", "ادارة اعمال", "إدارة", "ادارة", "ريادة",
			"business", "management", "business administration", "operations",
		},
	},
	{
		Label: DomainMarketing,
		Triggers: []string{
			"تسويق", "مبيعات", "إعلان",
			"marketing", "sales", "advertising", "seo",
		},
	},
	{
		Label: DomainAccounting,
		Triggers: []string{
			"محاسبة", "محاسب", "مالية", "تدقيق",
			"accounting", "accountant", "finance", "audit",
		},
	},
	{
		Label: DomainEducation,
		Triggers: []string{
			"تعليم", "معلم", "تدريس", "مدرس",
			"education", "teacher", "teaching", "tutor",
		},
	},
	{
		Label: DomainDesign,
		Triggers: []string{
			"تصميم", "مصمم", "جرافيك",
			"design", "designer", "graphic", "ux design", "ui/ux", "ux/ui", "user experience",
		},
	},
}

// StepLabels maps a form step index to the section shown to the user.
var StepLabels = []string{
	"Personal Information",
	"Education",
	"Experience",
	"Skills",
	"Career Goals",
	"Review",
}

// UnknownSection is returned for step indexes outside StepLabels.
const UnknownSection = "Unknown"

// SectionLabel returns the label for a step index.
func SectionLabel(step int) string {
	if step < 0 || step >= len(StepLabels) {
		return UnknownSection
	}
	return StepLabels[step]
}

// StepHints are the coaching texts offered when the user arrives at a step.
var StepHints = map[int]string{
	0: "ابدأ بمعلومات التواصل الأساسية: الاسم والبريد الإلكتروني ورقم الهاتف.",
	1: "أضف تخصصك والجامعة التي درست فيها، فهذه المعلومات تحدد مجالك المهني.",
	2: "صف مسؤولياتك وإنجازاتك بأرقام ونتائج ملموسة كلما أمكن.",
	3: "اختر المهارات الأقرب إلى الوظيفة التي تستهدفها، خمس إلى عشر مهارات تكفي.",
	4: "حدد هدفك المهني بجملة أو جملتين واضحتين.",
	5: "راجع ملفك قبل الحفظ وتأكد من اكتمال الحقول المطلوبة.",
}
