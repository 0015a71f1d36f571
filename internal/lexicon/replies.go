package lexicon

// DomainReplies are the canned assistant replies used when the remote
// reasoning service is unavailable, keyed by domain label.
var DomainReplies = map[string]string{
	DomainSoftware:    "بصفتك في مجال الحاسوب والبرمجيات، أبرز المشاريع التي بنيتها واللغات والأدوات التي تتقنها، وأضف روابط لأعمالك إن وجدت.",
	DomainElectrical:  "في الهندسة الكهربائية يهتم أصحاب العمل بالمشاريع العملية والشهادات المهنية وبرامج التصميم التي تستخدمها.",
	DomainCivil:       "في الهندسة المدنية اذكر المشاريع التي شاركت فيها وحجمها والبرامج الهندسية التي تعمل عليها.",
	DomainMechanical:  "في الهندسة الميكانيكية أبرز خبرتك في التصميم والتصنيع والبرامج مثل أنظمة التصميم بمساعدة الحاسوب.",
	DomainEngineering: "لملف هندسي قوي، اذكر المشاريع والأدوات والشهادات المهنية مع نتائج قابلة للقياس.",
	DomainMedicine:    "في المجال الطبي ركز على التراخيص والتدريب السريري والتخصصات التي عملت فيها.",
	DomainBusiness:    "في إدارة الأعمال أبرز قيادتك للفرق والنتائج التي حققتها بالأرقام.",
	DomainMarketing:   "في التسويق والمبيعات اذكر الحملات التي قدتها ونسب النمو أو المبيعات التي حققتها.",
	DomainAccounting:  "في المحاسبة والمالية اذكر الأنظمة المحاسبية التي تتقنها والشهادات المهنية التي تحملها.",
	DomainEducation:   "في التعليم أبرز المراحل التي درّستها وأساليب التعليم التي طورتها ونتائج طلابك.",
	DomainDesign:      "في التصميم أضف رابط معرض أعمالك واذكر الأدوات التي تستخدمها ونوع المشاريع التي تفضلها.",
}

// GenericReply is used when the domain has no dedicated reply.
const GenericReply = "يسعدني مساعدتك في بناء ملفك المهني. أكمل الحقول الأساسية وسأقترح عليك خطوات مناسبة لمجالك."

// TopicReplies add a topic-specific sentence when the user's message hits a topic bucket.
var TopicReplies = map[string]string{
	TopicSkills:     "بالنسبة للمهارات، اختر ما يطلبه سوق العمل في مجالك وابدأ بالأقوى.",
	TopicExperience: "بالنسبة للخبرة، صف كل دور بمسؤولياته وإنجازاته الأهم.",
	TopicEducation:  "بالنسبة للتعليم، اذكر التخصص والجامعة وسنة التخرج وأي مشروع تخرج مميز.",
	TopicCareer:     "بالنسبة لمسارك المهني، حدد المسمى الذي تستهدفه خلال السنتين القادمتين.",
	TopicSalary:     "بالنسبة للراتب، قارن العروض في مجالك ومدينتك قبل التفاوض.",
	TopicCompanies:  "بالنسبة للشركات، ابحث عن الشركات التي توظف في مجالك وتابع صفحاتها المهنية.",
}

// CompletionNudges are keyed by completion bucket name and take the
// completion percentage as their only argument.
var CompletionNudges = map[string]string{
	"low":    "ملفك مكتمل بنسبة %d٪. أكمل معلومات التواصل وتخصصك لتحصل على اقتراحات أدق.",
	"medium": "أحسنت! ملفك مكتمل بنسبة %d٪. بقيت خطوات قليلة لملف قوي.",
	"high":   "رائع، ملفك مكتمل بنسبة %d٪. راجع التفاصيل الأخيرة وأنت جاهز.",
}
