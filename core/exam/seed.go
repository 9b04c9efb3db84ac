package exam

// SeedExams returns the built-in exams. They are code-defined, never
// persisted, and reconstituted on every start.
func SeedExams() []Exam {
	return []Exam{
		{
			ID:       "seed-toan-12",
			Title:    "Đề thi thử Toán học THPT",
			Subject:  "Toán học",
			Duration: 15,
			Questions: []Question{
				{
					ID:            1,
					Text:          "Đạo hàm của hàm số y = x² là gì?",
					Options:       []string{"y' = x", "y' = 2x", "y' = x²", "y' = 2"},
					CorrectAnswer: 1,
					Explanation:   "Áp dụng công thức (xⁿ)' = n·xⁿ⁻¹ với n = 2 ta được y' = 2x.",
				},
				{
					ID:            2,
					Text:          "Nghiệm của phương trình 2x + 4 = 0 là?",
					Options:       []string{"x = 2", "x = -2", "x = 4", "x = -4"},
					CorrectAnswer: 1,
					Explanation:   "2x = -4 nên x = -2.",
				},
				{
					ID:            3,
					Text:          "Giá trị của sin(90°) bằng bao nhiêu?",
					Options:       []string{"0", "1/2", "√2/2", "1"},
					CorrectAnswer: 3,
					Explanation:   "sin(90°) = 1 là giá trị lớn nhất của hàm sin.",
				},
			},
		},
		{
			ID:       "seed-anh-12",
			Title:    "Đề kiểm tra Tiếng Anh cơ bản",
			Subject:  "Tiếng Anh",
			Duration: 10,
			Questions: []Question{
				{
					ID:            1,
					Text:          "She ___ to school every day.",
					Options:       []string{"go", "goes", "going", "gone"},
					CorrectAnswer: 1,
					Explanation:   "Chủ ngữ ngôi thứ ba số ít ở thì hiện tại đơn dùng động từ thêm -es.",
				},
				{
					ID:            2,
					Text:          "Chọn từ trái nghĩa với \"difficult\".",
					Options:       []string{"hard", "easy", "heavy", "strong"},
					CorrectAnswer: 1,
					Explanation:   "\"easy\" (dễ) trái nghĩa với \"difficult\" (khó).",
				},
			},
		},
	}
}
