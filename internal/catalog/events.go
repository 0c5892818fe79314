package catalog

// builtinEvents is the stock event set. Operators can extend it with overlay
// asset files, but the simulation is designed to run fine on these alone.
var builtinEvents = []*Event{
	{
		ID:    "quiet_maintenance",
		Title: LocalizedText{Ko: "조용한 날", En: "Quiet Day"},
		Description: LocalizedText{
			Ko: "큰 사건은 없었습니다. 오늘 무엇에 집중할까요?",
			En: "No major incidents. What should the colony focus on today?",
		},
		Choices: []Choice{
			{
				ID:          "maintain",
				Label:       LocalizedText{Ko: "정비", En: "Maintenance"},
				Description: LocalizedText{Ko: "HP +1", En: "HP +1"},
				Delta:       Delta{HP: 1},
			},
			{
				ID:          "farm",
				Label:       LocalizedText{Ko: "농사", En: "Farming"},
				Description: LocalizedText{Ko: "식량 +2", En: "Food +2"},
				Delta:       Delta{Food: 2},
			},
			{
				ID:          "mine",
				Label:       LocalizedText{Ko: "채굴", En: "Mining"},
				Description: LocalizedText{Ko: "돈 +2", En: "Money +2"},
				Delta:       Delta{Money: 2},
			},
		},
	},
	{
		ID:    "trader_visit",
		Title: LocalizedText{Ko: "상단 방문", En: "Trader Caravan"},
		Description: LocalizedText{
			Ko: "상인들이 거래를 제안합니다.",
			En: "A caravan offers to trade supplies.",
		},
		Choices: []Choice{
			{
				ID:          "buy_food",
				Label:       LocalizedText{Ko: "식량 구매", En: "Buy Food"},
				Description: LocalizedText{Ko: "돈 -1, 식량 +3", En: "Money -1, Food +3"},
				Delta:       Delta{Food: 3, Money: -1},
			},
			{
				ID:          "buy_meds",
				Label:       LocalizedText{Ko: "치료제 구매", En: "Buy Meds"},
				Description: LocalizedText{Ko: "돈 -1, 치료제 +2", En: "Money -1, Meds +2"},
				Delta:       Delta{Meds: 2, Money: -1},
			},
			{
				ID:          "pass_trade",
				Label:       LocalizedText{Ko: "거래 안 함", En: "Pass"},
				Description: LocalizedText{Ko: "변화 없음", En: "No changes"},
				Delta:       Delta{},
			},
		},
	},
	{
		ID:    "raider_attack",
		Title: LocalizedText{Ko: "레이더 습격", En: "Raider Attack"},
		Description: LocalizedText{
			Ko: "무장한 습격자들이 기지를 덮쳤습니다.",
			En: "Armed raiders are attacking the base.",
		},
		Choices: []Choice{
			{
				ID:          "counter_attack",
				Label:       LocalizedText{Ko: "정면전", En: "Counter Attack"},
				Description: LocalizedText{Ko: "HP -3, 돈 +1", En: "HP -3, Money +1"},
				Delta:       Delta{HP: -3, Money: 1},
			},
			{
				ID:          "hold_line",
				Label:       LocalizedText{Ko: "방어전", En: "Hold Position"},
				Description: LocalizedText{Ko: "HP -2, 식량 -1", En: "HP -2, Food -1"},
				Delta:       Delta{HP: -2, Food: -1},
			},
			{
				ID:          "retreat",
				Label:       LocalizedText{Ko: "후퇴", En: "Retreat"},
				Description: LocalizedText{Ko: "식량 -2, 돈 -1", En: "Food -2, Money -1"},
				Delta:       Delta{Food: -2, Money: -1},
			},
		},
	},
	{
		ID:    "disease_outbreak",
		Title: LocalizedText{Ko: "질병 확산", En: "Disease Outbreak"},
		Description: LocalizedText{
			Ko: "캠프에 질병이 퍼지고 있습니다.",
			En: "A disease is spreading through the camp.",
		},
		Choices: []Choice{
			{
				ID:          "use_meds",
				Label:       LocalizedText{Ko: "치료제 사용", En: "Use Meds"},
				Description: LocalizedText{Ko: "치료제 -1, HP +2", En: "Meds -1, HP +2"},
				Delta:       Delta{HP: 2, Meds: -1},
			},
			{
				ID:          "isolation",
				Label:       LocalizedText{Ko: "격리", En: "Isolation"},
				Description: LocalizedText{Ko: "식량 -1, HP -1", En: "Food -1, HP -1"},
				Delta:       Delta{HP: -1, Food: -1},
			},
			{
				ID:          "work_through",
				Label:       LocalizedText{Ko: "강행", En: "Push Through"},
				Description: LocalizedText{Ko: "HP -2, 돈 +1", En: "HP -2, Money +1"},
				Delta:       Delta{HP: -2, Money: 1},
			},
		},
	},
}

// Default returns a catalog containing only the built-in events.
func Default() *Catalog {
	c, err := New(builtinEvents)
	if err != nil {
		// The built-in set is covered by tests; failing here means the
		// binary itself is broken.
		panic(err)
	}
	return c
}
