package models

// DefaultDocument returns the bootstrap nation used when nothing has been persisted.
func DefaultDocument() *NationDocument {
	return &NationDocument{
		Stats: Stats{
			Territory:       "가상의 대륙 중심부",
			Flag:            "https://images.unsplash.com/photo-1517059224940-d4af9eec41b7?auto=format&fit=crop&q=80&w=800",
			CoatOfArms:      "https://images.unsplash.com/photo-1590073242685-c4ef8867550d?auto=format&fit=crop&q=80&w=400",
			FormalName:      "슈퍼파워 연방 공화국",
			EnglishName:     "Federal Republic of SuperPower",
			Capital:         "슈퍼파워 시티",
			OfficialName:    "슈퍼파워 연방",
			Language:        "슈퍼파워어, 한국어",
			Currency:        "슈퍼 (SPR)",
			Population:      "55,000,000명",
			TotalGDP:        "$2.4조",
			HDI:             "0.942 (최상급)",
			Area:            "512,000 km²",
			Motto:           "자유와 정의의 영원한 빛",
			PoliticalSystem: "대통령제 공화국",
			HeadOfState:     "이슈퍼 대통령",
			HistoryOverview: "고대 부족 국가에서 시작하여 연방제로 통합되었습니다.",
		},
		Details: Details{
			History: History{
				Ancient:      "고대 슈퍼파워 부족들의 연맹체 형성 시기. 초기 문명이 강가에서 발원하였습니다.",
				Medieval:     "중앙집권적 왕국으로의 발전과 문화적 번영. 주변국과의 교역이 활발했습니다.",
				Modern:       "산업 혁명과 공화국 수립을 위한 혁명의 시대. 민주주의의 기틀이 마련되었습니다.",
				Contemporary: "글로벌 강국으로 도약하는 현대의 슈퍼파워. 첨단 기술과 문화의 중심지가 되었습니다.",
			},
			Military: Military{
				Overview: "국민 개병제 기반의 현대적 정예 강군",
				Army:     "최신형 전차와 포병 전력을 보유한 육군.",
				Navy:     "대양 해군을 지향하며 항모 강습단을 보유한 해군.",
				Airforce: "스텔스 전투기와 독자적 위성 체계를 갖춘 공군.",
				Numerical: MilitaryNumerics{
					TroopCount:      600000,
					TankCount:       2500,
					ShipCount:       150,
					AircraftCount:   450,
					NuclearWarheads: 0,
					ReadinessLevel:  95,
				},
			},
			Economy: Economy{
				Overview: "첨단 제조업과 지식 기반 서비스업이 조화를 이루는 시장 경제.",
				Stats: EconomyStats{
					GDPGrowthRate: "3.2%",
					KeyIndustries: []string{"반도체", "AI 로봇", "바이오", "에너지"},
				},
			},
			Culture: Culture{
				Overview:   "다양한 부족 전통이 융합된 개방적인 연방 문화.",
				Traditions: []string{"건국 기념 등불 축제", "강가 추수 감사제"},
				Cuisine:    "강 유역의 곡물과 향신료를 활용한 연방 요리.",
				Arts:       "전통 공예와 현대 미디어 아트가 공존합니다.",
			},
			Nature: Nature{
				Overview:  "대륙 중심부의 평원과 산맥, 큰 강이 어우러진 국토.",
				Climate:   "사계절이 뚜렷한 온대 기후",
				Terrain:   "중앙 평원, 북부 산맥, 남부 해안",
				Resources: []string{"희토류", "수력", "곡창 지대"},
			},
			Government: []GovernmentSection{
				{
					Title:       "행정부",
					Description: "대통령이 국가 원수이자 행정 수반입니다.",
					Items:       []string{"대통령실", "국무회의", "연방 부처"},
				},
				{
					Title:       "입법부",
					Description: "양원제 연방 의회가 법률을 제정합니다.",
					Items:       []string{"연방 상원", "연방 하원"},
				},
				{
					Title:       "사법부",
					Description: "독립된 연방 법원이 헌법을 수호합니다.",
					Items:       []string{"연방 대법원", "헌법 재판소"},
				},
			},
		},
		Posts: []Post{
			{
				ID:        "1",
				Author:    "대통령실",
				Title:     "국가 포털 개설을 환영합니다",
				Content:   "슈퍼파워 연방의 새로운 시작입니다.",
				Timestamp: 1709251200000,
				Category:  CategoryGeneral,
				Reports:   []Report{},
			},
		},
		Users: []Citizen{},
	}
}
