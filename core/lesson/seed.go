package lesson

import "time"

// SeedLessons returns the built-in lesson library, code-defined and never
// persisted.
func SeedLessons() []Lesson {
	created := time.Date(2024, time.September, 5, 8, 0, 0, 0, time.UTC)
	return []Lesson{
		{
			ID:        "seed-ls-ham-so",
			Title:     "Khảo sát hàm số bậc ba",
			Subject:   "Toán học",
			Author:    "EduExam",
			AuthorID:  "system",
			Thumbnail: "https://placehold.co/640x360?text=Toan",
			Content:   "Các bước khảo sát và vẽ đồ thị hàm số bậc ba: tập xác định, đạo hàm, bảng biến thiên, điểm uốn và đồ thị.",
			CreatedAt: created,
			VideoURL:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			ID:        "seed-ls-thi-hien-tai",
			Title:     "Thì hiện tại đơn và hiện tại tiếp diễn",
			Subject:   "Tiếng Anh",
			Author:    "EduExam",
			AuthorID:  "system",
			Thumbnail: "https://placehold.co/640x360?text=English",
			Content:   "Phân biệt cách dùng, dấu hiệu nhận biết và các lỗi thường gặp của hai thì hiện tại.",
			CreatedAt: created.Add(24 * time.Hour),
		},
	}
}
