package language

// Entry is a language table row: 639-1 code, 639-3 code, English name,
// autonym. It marshals as a four-element array.
type Entry [4]string

// table lists the languages with a two-letter ISO 639-1 code, ordered by
// English name.
var table = []Entry{
	{"ab", "abk", "Abkhazian", "аҧсуа бызшәа"},
	{"aa", "aar", "Afar", "Afaraf"},
	{"af", "afr", "Afrikaans", "Afrikaans"},
	{"ak", "aka", "Akan", "Akan"},
	{"sq", "sqi", "Albanian", "Shqip"},
	{"am", "amh", "Amharic", "አማርኛ"},
	{"ar", "ara", "Arabic", "العربية"},
	{"an", "arg", "Aragonese", "aragonés"},
	{"hy", "hye", "Armenian", "Հայերեն"},
	{"as", "asm", "Assamese", "অসমীয়া"},
	{"av", "ava", "Avaric", "авар мацӀ"},
	{"ae", "ave", "Avestan", "avesta"},
	{"ay", "aym", "Aymara", "aymar aru"},
	{"az", "aze", "Azerbaijani", "azərbaycan dili"},
	{"bm", "bam", "Bambara", "bamanankan"},
	{"ba", "bak", "Bashkir", "башҡорт теле"},
	{"eu", "eus", "Basque", "euskara"},
	{"be", "bel", "Belarusian", "беларуская мова"},
	{"bn", "ben", "Bengali", "বাংলা"},
	{"bi", "bis", "Bislama", "Bislama"},
	{"bs", "bos", "Bosnian", "bosanski jezik"},
	{"br", "bre", "Breton", "brezhoneg"},
	{"bg", "bul", "Bulgarian", "български език"},
	{"my", "mya", "Burmese", "ဗမာစာ"},
	{"ca", "cat", "Catalan", "català"},
	{"ch", "cha", "Chamorro", "Chamoru"},
	{"ce", "che", "Chechen", "нохчийн мотт"},
	{"ny", "nya", "Chichewa", "chiCheŵa"},
	{"zh", "zho", "Chinese", "中文"},
	{"cu", "chu", "Church Slavonic", "ѩзыкъ словѣньскъ"},
	{"cv", "chv", "Chuvash", "чӑваш чӗлхи"},
	{"kw", "cor", "Cornish", "Kernewek"},
	{"co", "cos", "Corsican", "corsu"},
	{"cr", "cre", "Cree", "ᓀᐦᐃᔭᐍᐏᐣ"},
	{"hr", "hrv", "Croatian", "hrvatski jezik"},
	{"cs", "ces", "Czech", "čeština"},
	{"da", "dan", "Danish", "dansk"},
	{"dv", "div", "Divehi", "ދިވެހި"},
	{"nl", "nld", "Dutch", "Nederlands"},
	{"dz", "dzo", "Dzongkha", "རྫོང་ཁ"},
	{"en", "eng", "English", "English"},
	{"eo", "epo", "Esperanto", "Esperanto"},
	{"et", "est", "Estonian", "eesti"},
	{"ee", "ewe", "Ewe", "Eʋegbe"},
	{"fo", "fao", "Faroese", "føroyskt"},
	{"fj", "fij", "Fijian", "vosa Vakaviti"},
	{"fi", "fin", "Finnish", "suomi"},
	{"fr", "fra", "French", "français"},
	{"ff", "ful", "Fulah", "Fulfulde"},
	{"gl", "glg", "Galician", "Galego"},
	{"lg", "lug", "Ganda", "Luganda"},
	{"ka", "kat", "Georgian", "ქართული"},
	{"de", "deu", "German", "Deutsch"},
	{"el", "ell", "Greek", "ελληνικά"},
	{"kl", "kal", "Greenlandic", "kalaallisut"},
	{"gn", "grn", "Guarani", "Avañe'ẽ"},
	{"gu", "guj", "Gujarati", "ગુજરાતી"},
	{"ht", "hat", "Haitian", "Kreyòl ayisyen"},
	{"ha", "hau", "Hausa", "هَوُسَ"},
	{"he", "heb", "Hebrew", "עברית"},
	{"hz", "her", "Herero", "Otjiherero"},
	{"hi", "hin", "Hindi", "हिन्दी"},
	{"ho", "hmo", "Hiri Motu", "Hiri Motu"},
	{"hu", "hun", "Hungarian", "magyar"},
	{"is", "isl", "Icelandic", "Íslenska"},
	{"io", "ido", "Ido", "Ido"},
	{"ig", "ibo", "Igbo", "Asụsụ Igbo"},
	{"id", "ind", "Indonesian", "Bahasa Indonesia"},
	{"ia", "ina", "Interlingua", "Interlingua"},
	{"ie", "ile", "Interlingue", "Interlingue"},
	{"iu", "iku", "Inuktitut", "ᐃᓄᒃᑎᑐᑦ"},
	{"ik", "ipk", "Inupiaq", "Iñupiaq"},
	{"ga", "gle", "Irish", "Gaeilge"},
	{"it", "ita", "Italian", "Italiano"},
	{"ja", "jpn", "Japanese", "日本語"},
	{"jv", "jav", "Javanese", "basa Jawa"},
	{"kn", "kan", "Kannada", "ಕನ್ನಡ"},
	{"kr", "kau", "Kanuri", "Kanuri"},
	{"ks", "kas", "Kashmiri", "कश्मीरी"},
	{"kk", "kaz", "Kazakh", "қазақ тілі"},
	{"km", "khm", "Khmer", "ខ្មែរ"},
	{"ki", "kik", "Kikuyu", "Gĩkũyũ"},
	{"rw", "kin", "Kinyarwanda", "Ikinyarwanda"},
	{"kv", "kom", "Komi", "коми кыв"},
	{"kg", "kon", "Kongo", "Kikongo"},
	{"ko", "kor", "Korean", "한국어"},
	{"kj", "kua", "Kuanyama", "Kuanyama"},
	{"ku", "kur", "Kurdish", "Kurdî"},
	{"ky", "kir", "Kyrgyz", "Кыргызча"},
	{"lo", "lao", "Lao", "ພາສາລາວ"},
	{"la", "lat", "Latin", "latine"},
	{"lv", "lav", "Latvian", "latviešu valoda"},
	{"li", "lim", "Limburgish", "Limburgs"},
	{"ln", "lin", "Lingala", "Lingála"},
	{"lt", "lit", "Lithuanian", "lietuvių kalba"},
	{"lu", "lub", "Luba-Katanga", "Kiluba"},
	{"lb", "ltz", "Luxembourgish", "Lëtzebuergesch"},
	{"mk", "mkd", "Macedonian", "македонски јазик"},
	{"mg", "mlg", "Malagasy", "fiteny malagasy"},
	{"ms", "msa", "Malay", "Bahasa Melayu"},
	{"ml", "mal", "Malayalam", "മലയാളം"},
	{"mt", "mlt", "Maltese", "Malti"},
	{"gv", "glv", "Manx", "Gaelg"},
	{"mi", "mri", "Maori", "te reo Māori"},
	{"mr", "mar", "Marathi", "मराठी"},
	{"mh", "mah", "Marshallese", "Kajin M̧ajeļ"},
	{"mn", "mon", "Mongolian", "Монгол хэл"},
	{"na", "nau", "Nauru", "Dorerin Naoero"},
	{"nv", "nav", "Navajo", "Diné bizaad"},
	{"ng", "ndo", "Ndonga", "Owambo"},
	{"ne", "nep", "Nepali", "नेपाली"},
	{"nd", "nde", "North Ndebele", "isiNdebele"},
	{"se", "sme", "Northern Sami", "Davvisámegiella"},
	{"no", "nor", "Norwegian", "Norsk"},
	{"nb", "nob", "Norwegian Bokmål", "Norsk bokmål"},
	{"nn", "nno", "Norwegian Nynorsk", "Norsk nynorsk"},
	{"oc", "oci", "Occitan", "occitan"},
	{"oj", "oji", "Ojibwa", "ᐊᓂᔑᓈᐯᒧᐎᓐ"},
	{"or", "ori", "Oriya", "ଓଡ଼ିଆ"},
	{"om", "orm", "Oromo", "Afaan Oromoo"},
	{"os", "oss", "Ossetian", "ирон æвзаг"},
	{"pi", "pli", "Pali", "पालि"},
	{"ps", "pus", "Pashto", "پښتو"},
	{"fa", "fas", "Persian", "فارسی"},
	{"pl", "pol", "Polish", "język polski"},
	{"pt", "por", "Portuguese", "Português"},
	{"pa", "pan", "Punjabi", "ਪੰਜਾਬੀ"},
	{"qu", "que", "Quechua", "Runa Simi"},
	{"ro", "ron", "Romanian", "Română"},
	{"rm", "roh", "Romansh", "Rumantsch Grischun"},
	{"rn", "run", "Rundi", "Ikirundi"},
	{"ru", "rus", "Russian", "русский"},
	{"sm", "smo", "Samoan", "gagana fa'a Samoa"},
	{"sg", "sag", "Sango", "yângâ tî sängö"},
	{"sa", "san", "Sanskrit", "संस्कृतम्"},
	{"sc", "srd", "Sardinian", "sardu"},
	{"gd", "gla", "Scottish Gaelic", "Gàidhlig"},
	{"sr", "srp", "Serbian", "српски језик"},
	{"sn", "sna", "Shona", "chiShona"},
	{"ii", "iii", "Sichuan Yi", "ꆈꌠ꒿ Nuosuhxop"},
	{"sd", "snd", "Sindhi", "सिन्धी"},
	{"si", "sin", "Sinhala", "සිංහල"},
	{"sk", "slk", "Slovak", "Slovenčina"},
	{"sl", "slv", "Slovenian", "Slovenski jezik"},
	{"so", "som", "Somali", "Soomaaliga"},
	{"nr", "nbl", "South Ndebele", "isiNdebele"},
	{"st", "sot", "Southern Sotho", "Sesotho"},
	{"es", "spa", "Spanish", "Español"},
	{"su", "sun", "Sundanese", "Basa Sunda"},
	{"sw", "swa", "Swahili", "Kiswahili"},
	{"ss", "ssw", "Swati", "SiSwati"},
	{"sv", "swe", "Swedish", "Svenska"},
	{"tl", "tgl", "Tagalog", "Wikang Tagalog"},
	{"ty", "tah", "Tahitian", "Reo Tahiti"},
	{"tg", "tgk", "Tajik", "тоҷикӣ"},
	{"ta", "tam", "Tamil", "தமிழ்"},
	{"tt", "tat", "Tatar", "татар теле"},
	{"te", "tel", "Telugu", "తెలుగు"},
	{"th", "tha", "Thai", "ไทย"},
	{"bo", "bod", "Tibetan", "བོད་ཡིག"},
	{"ti", "tir", "Tigrinya", "ትግርኛ"},
	{"to", "ton", "Tongan", "faka Tonga"},
	{"ts", "tso", "Tsonga", "Xitsonga"},
	{"tn", "tsn", "Tswana", "Setswana"},
	{"tr", "tur", "Turkish", "Türkçe"},
	{"tk", "tuk", "Turkmen", "Türkmençe"},
	{"tw", "twi", "Twi", "Twi"},
	{"uk", "ukr", "Ukrainian", "Українська"},
	{"ur", "urd", "Urdu", "اردو"},
	{"ug", "uig", "Uyghur", "ئۇيغۇرچە"},
	{"uz", "uzb", "Uzbek", "Oʻzbek"},
	{"ve", "ven", "Venda", "Tshivenḓa"},
	{"vi", "vie", "Vietnamese", "Tiếng Việt"},
	{"vo", "vol", "Volapük", "Volapük"},
	{"wa", "wln", "Walloon", "walon"},
	{"cy", "cym", "Welsh", "Cymraeg"},
	{"fy", "fry", "Western Frisian", "Frysk"},
	{"wo", "wol", "Wolof", "Wollof"},
	{"xh", "xho", "Xhosa", "isiXhosa"},
	{"yi", "yid", "Yiddish", "ייִדיש"},
	{"yo", "yor", "Yoruba", "Yorùbá"},
	{"za", "zha", "Zhuang", "Saɯ cueŋƅ"},
	{"zu", "zul", "Zulu", "isiZulu"},
}
