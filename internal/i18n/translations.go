package i18n

var translations = map[string]map[Language]string{
	"shop_name":           {AR: "فارما روش", FR: "Pharma Ruche", EN: "Pharma Ruche"},
	"tagline":             {AR: "من الطبيعة إليك", FR: "De la Nature à Vous", EN: "Pure & Organic"},
	"home":                {AR: "الرئيسية", FR: "Accueil", EN: "Home"},
	"products":            {AR: "المنتجات", FR: "Nos Produits", EN: "Our Products"},
	"reviews":             {AR: "آراء العملاء", FR: "Témoignages", EN: "Reviews"},
	"contact":             {AR: "اتصل بنا", FR: "Contact", EN: "Contact"},
	"add_to_cart":         {AR: "إضافة للسلة", FR: "Ajouter au panier", EN: "Add to Cart"},
	"checkout":            {AR: "الدفع", FR: "Commander", EN: "Checkout"},
	"cart":                {AR: "سلة المشتريات", FR: "Mon Panier", EN: "My Cart"},
	"total":               {AR: "المجموع", FR: "Total", EN: "Total"},
	"full_name":           {AR: "الاسم الكامل", FR: "Nom complet", EN: "Full Name"},
	"phone":               {AR: "رقم الهاتف", FR: "Téléphone", EN: "Phone"},
	"wilaya":              {AR: "الولاية", FR: "Wilaya", EN: "Province"},
	"address":             {AR: "العنوان", FR: "Adresse de livraison", EN: "Delivery Address"},
	"confirm_order":       {AR: "تأكيد الطلب", FR: "Confirmer la commande", EN: "Confirm Order"},
	"currency":            {AR: "دج", FR: "DA", EN: "DZD"},
	"hero_title":          {AR: "عسل طبيعي، نقي 100%", FR: "Miel Pur & Naturel", EN: "100% Pure Honey"},
	"hero_subtitle":       {AR: "من قلب الطبيعة الجزائرية، نقدم لكم أجود منتجات الخلية. خالية من الإضافات، غنية بالفوائد.", FR: "Du cœur de la nature algérienne, le meilleur de la ruche. Sans additifs, riche en bienfaits.", EN: "From the heart of Algerian nature, the best of the hive. No additives, rich in benefits."},
	"admin_panel":         {AR: "لوحة التحكم", FR: "Gestion Boutique", EN: "Shop Manager"},
	"orders":              {AR: "الطلبات", FR: "Commandes", EN: "Orders"},
	"status_pending":      {AR: "جديد", FR: "Nouveau", EN: "New"},
	"status_delivered":    {AR: "تم التسليم", FR: "Livré", EN: "Delivered"},
	"status_cancelled":    {AR: "ملغى", FR: "Annulé", EN: "Cancelled"},
	"empty_cart":          {AR: "سلتك فارغة", FR: "Votre panier est vide", EN: "Your cart is empty"},
	"login":               {AR: "دخول الموظفين", FR: "Accès Staff", EN: "Staff Login"},
	"password":            {AR: "كلمة المرور", FR: "Mot de passe", EN: "Password"},
	"back_to_shop":        {AR: "العودة للمتجر", FR: "Retour au site", EN: "Back to Shop"},
	"about_us":            {AR: "قصتنا", FR: "Notre Histoire", EN: "Our Story"},
	"stats_revenue":       {AR: "المبيعات", FR: "Chiffre d'Affaires", EN: "Revenue"},
	"stats_orders":        {AR: "الطلبات", FR: "Commandes", EN: "Orders"},
	"stats_pending":       {AR: "قيد المعالجة", FR: "En Cours", EN: "Pending"},
	"order_success_title": {AR: "تم استلام طلبك بنجاح!", FR: "Commande Reçue !", EN: "Order Received!"},
	"order_success_desc":  {AR: "شكراً لثقتك في منتجاتنا. سنتصل بك قريباً لتأكيد التوصيل.", FR: "Merci pour votre confiance. Nous vous appellerons bientôt pour la livraison.", EN: "Thank you for trusting us. We will call you shortly for delivery."},
	"order_failed":        {AR: "تعذر تسجيل الطلب. حاول مرة أخرى.", FR: "La commande n'a pas pu être enregistrée. Réessayez.", EN: "Order could not be placed. Please try again."},
	"close":               {AR: "إغلاق", FR: "Fermer", EN: "Close"},
	"admin_access":        {AR: "إدارة المتجر", FR: "Administration", EN: "Admin"},
	"inventory":           {AR: "المخزون", FR: "Stock", EN: "Inventory"},
	"dashboard":           {AR: "نظرة عامة", FR: "Vue d'ensemble", EN: "Overview"},
	"feedback":            {AR: "رأيك يهمنا", FR: "Votre avis", EN: "Your Feedback"},
	"latest_feedback":     {AR: "آخر التقييمات", FR: "Derniers avis", EN: "Latest Feedback"},
	"thank_feedback":      {AR: "شكراً على تقييمك!", FR: "Merci pour votre avis !", EN: "Thank you for your feedback!"},
}
