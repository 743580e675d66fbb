package models

const (
	// SlideNumberRegex extracts the slide number from forms like
	// "slide 11", "slide-11", "slide ke 11" and "slide ke-11".
	SlideNumberRegex = `(?i)slide(?:\s*ke)?[\s-]*(\d+)`
	// DocumentNameRegex captures an explicitly named document.
	DocumentNameRegex = `(?i)dokumen\s+([^\s?]+)`
	// KeywordQueryRegex is the "which slide discusses <topic>" pattern;
	// %s is the alternation of configured topic keywords.
	KeywordQueryRegex = `slide\s*ke\s*(?:berapa(?:\s*ya)?)?\s*(?:yang\s*)?(?:membahas|berisi|tentang)?\s*(?:topik|materi)?\s*(%s)\b`
	// NameRegex captures a self-introduced capitalized name.
	NameRegex = `(?i:nama\s*(?:saya|aku)?\s*(?:adalah)?\s*:?)\s*([A-Z][a-z]+)`
)

const (
	// SlideHeaderTemplate is prepended to every page text: slide number
	// and filename redundantly, as plain text, so substring search over
	// chunk content still recovers slide identity.
	SlideHeaderTemplate = "Slide ke-%d:\nSlide ke-%d dari dokumen '%s':\n%s"

	SlideNotFoundTemplate   = "Maaf, slide ke-%d dari dokumen '%s' tidak ditemukan."
	KeywordFoundTemplate    = "Keyword '%s' ditemukan di slide ke-%d dari dokumen '%s'.\n\n%s"
	KeywordNotFoundTemplate = "Maaf, tidak ditemukan slide yang membahas '%s' di dokumen '%s'."

	ToxicWarning = "Pertanyaan mengandung kata tidak pantas."
	EmptyAnswer  = "Maaf, tidak ada jawaban."
)

// PromptTemplate is the instruction block for the retrieval-augmented
// strategy. Arguments: greeting line, document context, conversation
// history, question.
var PromptTemplate = `%s kamu adalah asisten cerdas dan ramah.

Tugas kamu adalah membantu pengguna memahami isi dokumen PDF yang telah diunggah.

Berikut panduan menjawab:
1. Jika pengguna bertanya tentang slide tertentu (misalnya: "Slide ke-11"), carilah halaman dalam dokumen yang diawali dengan "Slide 11:" — atau bagian lain yang relevan secara konteks dan urutan isi.
2. Jika pengguna hanya bertanya pengertian suatu istilah (misalnya: "apa itu MoU", "jelaskan kontrak kerja") dan tidak menyebut nomor slide, berikan jawaban singkat berdasarkan isi dokumen tanpa perlu mencari slide tertentu.
3. Jika pengguna menyebut pengertian sekaligus nomor slide, tampilkan keduanya: pengertian secara umum terlebih dahulu, lalu lanjutkan dengan penjelasan isi dari slide terkait.

Penting:
- Jangan membuat atau menyusun ulang pertanyaan.
- Jangan menambahkan pertanyaan baru.
- Jawab hanya berdasarkan pertanyaan asli dari pengguna.
- Jawaban harus merujuk isi dokumen, jangan mengarang.

---------------------
Dokumen Konteks:
%s

Riwayat Percakapan:
%s

Pertanyaan:
%s

Jawaban:
`
