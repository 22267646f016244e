package catalog

import "github.com/Skotchmaster/pharma_ruche/internal/models"

const PlaceholderImage = "https://via.placeholder.com/400"

// InitialProducts seed an empty catalog and stand in when the product feed
// is unavailable.
var InitialProducts = []models.Product{
	{
		ID: "PR-EUC-500",
		Name: models.I18nText{
			AR: "عسل الكاليتوس - 500غ",
			FR: "Miel d'Eucalyptus - 500g",
			EN: "Eucalyptus Honey - 500g",
		},
		Description: models.I18nText{
			AR: "عسل طبيعي 100% مستخلص من أزهار الكاليتوس في غابات الجزائر. مذاق مميز وفوائد عظيمة.",
			FR: "Miel 100% naturel extrait des fleurs d'eucalyptus des forêts algériennes.",
			EN: "100% natural honey extracted from eucalyptus flowers in Algerian forests.",
		},
		Price:    2800,
		Image:    "https://images.unsplash.com/photo-1587049352846-4a222e784d38?auto=format&fit=crop&q=80&w=800",
		Category: "Honey",
	},
	{
		ID: "PR-SDR-250",
		Name: models.I18nText{
			AR: "عسل السدر الملكي - 250غ",
			FR: "Miel de Jujubier Royal - 250g",
			EN: "Royal Sidr Honey - 250g",
		},
		Description: models.I18nText{
			AR: "الذهب السائل. عسل سدر فاخر، قوام كثيف وطعم لا يقاوم. من أجود ما تنتجه مناحلنا.",
			FR: "L'Or liquide. Miel de jujubier premium, texture dense et goût irrésistible.",
			EN: "Liquid gold. Premium Sidr honey, dense texture and irresistible taste.",
		},
		Price:    4500,
		Image:    "https://images.unsplash.com/photo-1612475498348-e77e31e635d1?auto=format&fit=crop&q=80&w=800",
		Category: "Honey",
	},
	{
		ID: "PR-POL-100",
		Name: models.I18nText{
			AR: "حبوب الطلع - 100غ",
			FR: "Pollen d'Abeille - 100g",
			EN: "Bee Pollen - 100g",
		},
		Description: models.I18nText{
			AR: "كنز الفيتامينات. حبوب طلع طازجة تم جمعها بعناية لتعزيز طاقتك اليومية.",
			FR: "Trésor de vitamines. Pollen frais récolté avec soin pour booster votre énergie.",
			EN: "Vitamin treasure. Fresh pollen carefully collected to boost your daily energy.",
		},
		Price:    1200,
		Image:    "https://images.unsplash.com/photo-1555447405-058428d6964d?auto=format&fit=crop&q=80&w=800",
		Category: "Supplements",
	},
}
