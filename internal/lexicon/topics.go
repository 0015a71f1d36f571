package lexicon

// Conversation topics.
const (
	TopicSkills     = "skills"
	TopicExperience = "experience"
	TopicEducation  = "education"
	TopicCareer     = "career"
	TopicSalary     = "salary"
	TopicCompanies  = "companies"
)

// TopicBucket maps keywords found in user turns to a topic.
type TopicBucket struct {
	Topic    string
	Keywords []string
}

// TopicBuckets are scanned in order; a turn may hit several buckets.
var TopicBuckets = []TopicBucket{
	{Topic: TopicSkills, Keywords: []string{"مهارات", "مهارة", "skill"}},
	{Topic: TopicExperience, Keywords: []string{"خبرة", "خبرات", "عملت", "experience", "worked"}},
	{Topic: TopicEducation, Keywords: []string{"تعليم", "جامعة", "شهادة", "دراسة", "education", "degree", "university"}},
	{Topic: TopicCareer, Keywords: []string{"وظيفة", "مسار", "مهنة", "career", "job", "position"}},
	{Topic: TopicSalary, Keywords: []string{"راتب", "رواتب", "أجر", "salary", "pay"}},
	{Topic: TopicCompanies, Keywords: []string{"شركة", "شركات", "company", "companies", "employer"}},
}

// TechnicalKeywords mark a user as technically oriented.
var TechnicalKeywords = []string{
	"برمجة", "تقني", "تقنية", "برمجيات", "بيانات", "خوارزمية",
	"programming", "software", "code", "api", "data", "cloud", "devops", "algorithm",
}
