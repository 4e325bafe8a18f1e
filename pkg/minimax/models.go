package minimax

// Speech models
const (
	// ModelSpeech02HD is speech-02-hd, excellent rhythm, stability and cloning similarity.
	ModelSpeech02HD = "speech-02-hd"

	// ModelSpeech02Turbo is speech-02-turbo, enhanced multilingual capabilities.
	ModelSpeech02Turbo = "speech-02-turbo"

	// ModelSpeech01HD is speech-01-hd.
	ModelSpeech01HD = "speech-01-hd"

	// ModelSpeech01Turbo is speech-01-turbo.
	ModelSpeech01Turbo = "speech-01-turbo"
)

// SpeechModels lists the selectable speech models.
var SpeechModels = []string{ModelSpeech02HD, ModelSpeech02Turbo, ModelSpeech01HD, ModelSpeech01Turbo}

// Video models
const (
	// ModelHailuo02 is MiniMax-Hailuo-02, supports 512P-1080P and 6s/10s videos.
	ModelHailuo02 = "MiniMax-Hailuo-02"

	// ModelT2V01 is T2V-01, text-to-video model.
	ModelT2V01 = "T2V-01"

	// ModelT2V01Director is T2V-01-Director, supports camera movement control.
	ModelT2V01Director = "T2V-01-Director"

	// ModelI2V01 is I2V-01, image-to-video model.
	ModelI2V01 = "I2V-01"

	// ModelI2V01Director is I2V-01-Director, image-to-video with camera control.
	ModelI2V01Director = "I2V-01-Director"

	// ModelI2V01Live is I2V-01-live, image-to-video with multiple styles.
	ModelI2V01Live = "I2V-01-live"

	// ModelS2V01 is S2V-01, subject reference video model.
	ModelS2V01 = "S2V-01"
)

// VideoModels lists the selectable video models.
var VideoModels = []string{
	ModelT2V01Director, ModelT2V01, ModelI2V01Director, ModelI2V01, ModelI2V01Live, ModelS2V01, ModelHailuo02,
}

// Music models
const (
	// ModelMusic15 is music-1.5.
	ModelMusic15 = "music-1.5"
)

// Language boost options
const (
	LanguageChinese    = "Chinese"
	LanguageChineseYue = "Chinese,Yue" // Cantonese
	LanguageEnglish    = "English"
	LanguageAuto       = "auto"
)

// LanguageBoosts lists accepted language_boost values.
var LanguageBoosts = []string{
	"auto", "Chinese", "Chinese,Yue", "English", "Arabic", "Russian", "Spanish",
	"French", "Portuguese", "German", "Turkish", "Dutch", "Ukrainian", "Vietnamese",
	"Indonesian", "Japanese", "Italian", "Korean", "Thai", "Polish", "Romanian",
	"Greek", "Czech", "Finnish", "Hindi",
}

// Emotion options
const (
	EmotionHappy     = "happy"
	EmotionSad       = "sad"
	EmotionAngry     = "angry"
	EmotionFearful   = "fearful"
	EmotionDisgusted = "disgusted"
	EmotionSurprised = "surprised"
	EmotionNeutral   = "neutral"
)

// Emotions lists accepted emotion values.
var Emotions = []string{
	EmotionHappy, EmotionSad, EmotionAngry, EmotionFearful, EmotionDisgusted, EmotionSurprised, EmotionNeutral,
}

// Video resolutions
const (
	Resolution512P  = "512P"
	Resolution768P  = "768P"
	Resolution1080P = "1080P"
)
