package agents

import (
	"context"
	"fmt"

	"StockSage/internal/domain/models"
)

// ChatAssistant answers follow-up questions about the most recent
// analysis using the cached session context instead of rerunning the
// pipeline.
type ChatAssistant struct {
	base
}

func (a *ChatAssistant) Answer(ctx context.Context, sc *models.SessionContext, question string) string {
	system := fmt.Sprintf(`คุณเป็นผู้ช่วยนักวิเคราะห์หุ้น AI ที่เพิ่งวิเคราะห์ %s เสร็จ
ตอนนี้ผู้ใช้กำลังถามคำถามเพิ่มเติมเกี่ยวกับการวิเคราะห์นี้

หน้าที่ของคุณ:
- ตอบคำถามโดยอ้างอิงจากข้อมูลการวิเคราะห์ที่มี
- สรุปหรืออธิบายเพิ่มเติมตามที่ผู้ใช้ต้องการ
- ตอบเป็นภาษาไทย กระชับ ได้ใจความ
- ถ้าผู้ใช้ขอสรุป ให้สรุปประเด็นหลักๆ
- ถ้าผู้ใช้ถามเรื่องความเสี่ยง ให้เน้นข้อมูลจากส่วน Risk
- ถ้าผู้ใช้ถามราคา ให้อ้างอิงจากข้อมูลที่มี

=== ข้อมูลการวิเคราะห์ %s ===
คำตัดสิน: %s

%s`,
		sc.Ticker, sc.Ticker, sc.Decision, truncateRunes(sc.Report, 6000))

	return a.generate(ctx, system, question)
}
